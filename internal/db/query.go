package db

import (
	"strconv"
	"strings"
	"unicode"
)

// TagFilter matches documents whose tag field equals any of values.
// Returns "" when values is empty.
func TagFilter(field string, values ...string) string {
	if len(values) == 0 {
		return ""
	}
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = tagEscaper.Replace(v)
	}
	return "@" + field + ":{" + strings.Join(escaped, " | ") + "}"
}

// NumericAtLeast matches documents whose numeric field is >= minValue.
func NumericAtLeast(field string, minValue float64) string {
	return "@" + field + ":[" + strconv.FormatFloat(minValue, 'g', -1, 64) + " +inf]"
}

// PhraseAny matches documents whose text field contains any of phrases as
// an exact token sequence. Punctuation inside a phrase acts as a token
// separator, mirroring the index tokenizer. Returns "" when no phrase has tokens.
func PhraseAny(field string, phrases []string) string {
	parts := make([]string, 0, len(phrases))
	for _, p := range phrases {
		tokens := Tokens(p)
		if len(tokens) == 0 {
			continue
		}
		parts = append(parts, `"`+strings.Join(tokens, " ")+`"`)
	}
	if len(parts) == 0 {
		return ""
	}
	return "@" + field + ":(" + strings.Join(parts, " | ") + ")"
}

// Tokens splits s into lowercase letter/digit runs.
func Tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// And joins non-empty query clauses with implicit intersection.
// Returns "*" when every clause is empty.
func And(clauses ...string) string {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

var tagEscaper = strings.NewReplacer(
	",", "\\,",
	".", "\\.",
	"<", "\\<",
	">", "\\>",
	"{", "\\{",
	"}", "\\}",
	"\"", "\\\"",
	"'", "\\'",
	":", "\\:",
	";", "\\;",
	"!", "\\!",
	"@", "\\@",
	"#", "\\#",
	"$", "\\$",
	"%", "\\%",
	"^", "\\^",
	"&", "\\&",
	"*", "\\*",
	"(", "\\(",
	")", "\\)",
	"-", "\\-",
	"+", "\\+",
	"=", "\\=",
	"~", "\\~",
	"|", "\\|",
	" ", "\\ ",
)
