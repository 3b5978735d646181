// Package keyword turns fragment and query text into resolved keyword lists
// and fragment annotations using an immutable taxonomy.
package keyword

import (
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	domkw "github.com/kailas-cloud/plandex/internal/domain/keyword"
	"github.com/kailas-cloud/plandex/internal/domain/taxonomy"
)

const (
	compositeContextWindow = 50
	patternContextWindow   = 30

	longMatchRunes = 20
	yearBonus      = 0.10
	longMatchBonus = 0.05
)

var yearRegex = regexp.MustCompile(`\d{4}`)

// Detector runs the matcher, resolver and scorer over text.
// It holds no mutable state and is safe for concurrent use.
type Detector struct {
	tax *taxonomy.Taxonomy
}

// NewDetector creates a detector over tax.
func NewDetector(tax *taxonomy.Taxonomy) *Detector {
	return &Detector{tax: tax}
}

// Taxonomy returns the taxonomy the detector matches against.
func (d *Detector) Taxonomy() *taxonomy.Taxonomy { return d.tax }

// Detect returns the position-ordered, non-overlapping keywords of text.
func (d *Detector) Detect(text string) []domkw.Keyword {
	return Resolve(d.Match(text))
}

// Match returns every raw candidate in text: all curated phrase occurrences
// followed by every pattern match of every category, in category order.
// Overlapping candidates are kept.
func (d *Detector) Match(text string) []domkw.Keyword {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	idx := newRuneIndex(text)

	var out []domkw.Keyword
	for i, p := range d.tax.Phrases() {
		re := d.tax.PhraseMatcher(i)
		conf := d.tax.PhraseConfidence(p.Weight)
		for _, loc := range findWholeWord(re, text) {
			out = append(out, idx.keyword(text, loc, domkw.Composite, conf, compositeContextWindow))
		}
	}

	for _, cat := range domkw.PatternCategories {
		for _, re := range d.tax.Patterns(cat) {
			for _, loc := range re.FindAllStringIndex(text, -1) {
				if loc[0] == loc[1] {
					continue
				}
				conf := patternConfidence(cat, text[loc[0]:loc[1]])
				out = append(out, idx.keyword(text, loc, cat, conf, patternContextWindow))
			}
		}
	}
	return out
}

func patternConfidence(cat domkw.Category, matched string) float64 {
	conf := cat.BaseConfidence()
	if yearRegex.MatchString(matched) {
		conf += yearBonus
	}
	if utf8.RuneCountInString(matched) > longMatchRunes {
		conf += longMatchBonus
	}
	return conf
}

// findWholeWord returns the byte ranges of matches of re that sit on word
// boundaries at both ends. Boundaries are Unicode aware so accented letters
// count as word characters.
func findWholeWord(re *regexp.Regexp, text string) [][]int {
	var out [][]int
	for pos := 0; pos < len(text); {
		loc := re.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		if end > start && isBoundary(text, start) && isBoundary(text, end) {
			out = append(out, []int{start, end})
			pos = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		pos = start + max(size, 1)
	}
	return out
}

func isBoundary(text string, i int) bool {
	var before, after bool
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:i])
		before = isWordRune(r)
	}
	if i < len(text) {
		r, _ := utf8.DecodeRuneInString(text[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// runeIndex maps byte offsets of a string to rune offsets.
type runeIndex struct {
	byteToRune []int
	runeToByte []int
}

func newRuneIndex(text string) runeIndex {
	idx := runeIndex{
		byteToRune: make([]int, len(text)+1),
		runeToByte: make([]int, 0, len(text)+1),
	}
	for i := range text {
		idx.byteToRune[i] = len(idx.runeToByte)
		idx.runeToByte = append(idx.runeToByte, i)
	}
	idx.byteToRune[len(text)] = len(idx.runeToByte)
	idx.runeToByte = append(idx.runeToByte, len(text))
	return idx
}

func (idx runeIndex) runes() int { return len(idx.runeToByte) - 1 }

func (idx runeIndex) keyword(
	text string, loc []int, cat domkw.Category, conf float64, window int,
) domkw.Keyword {
	start, end := idx.byteToRune[loc[0]], idx.byteToRune[loc[1]]
	from := max(0, start-window)
	to := min(idx.runes(), end+window)
	ctx := strings.TrimSpace(text[idx.runeToByte[from]:idx.runeToByte[to]])
	return domkw.New(text[loc[0]:loc[1]], cat, start, end-start, conf, ctx)
}

// Resolve removes overlaps from candidates. Candidates are ordered by start
// position (stable) and walked once: a candidate starting at or after the end
// of the last accepted keyword is accepted; an overlapping one replaces the
// last accepted keyword only when its confidence is strictly higher.
// Only the immediately preceding accepted keyword is compared.
func Resolve(candidates []domkw.Keyword) []domkw.Keyword {
	if len(candidates) == 0 {
		return nil
	}
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b domkw.Keyword) int {
		return a.Position() - b.Position()
	})

	accepted := make([]domkw.Keyword, 0, len(sorted))
	for _, k := range sorted {
		if len(accepted) == 0 {
			accepted = append(accepted, k)
			continue
		}
		last := accepted[len(accepted)-1]
		if k.Position() >= last.End() {
			accepted = append(accepted, k)
			continue
		}
		if k.Confidence() > last.Confidence() {
			accepted[len(accepted)-1] = k
		}
	}
	return accepted
}
