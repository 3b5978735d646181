// Package taxonomy holds the immutable keyword taxonomy: curated composite
// phrases with priority weights and the ordered regular expressions of each
// pattern category. A Taxonomy is read-only after construction and safe to
// share between goroutines.
package taxonomy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kailas-cloud/plandex/internal/domain"
	"github.com/kailas-cloud/plandex/internal/domain/keyword"
)

// Phrase is a curated composite keyword with its priority weight.
type Phrase struct {
	Text   string
	Weight float64
}

// PatternSet is the ordered list of expressions for one pattern category.
type PatternSet struct {
	Category keyword.Category
	Patterns []string
}

// Definition is the uncompiled taxonomy.
type Definition struct {
	Phrases   []Phrase
	Patterns  []PatternSet
	Templates []string
}

type compiledPhrase struct {
	Phrase
	re *regexp.Regexp
}

// Taxonomy is the compiled, validated keyword taxonomy.
type Taxonomy struct {
	phrases   []compiledPhrase
	maxWeight float64
	patterns  map[keyword.Category][]*regexp.Regexp
	templates []string
	version   string
}

// New validates and compiles def. Any invalid phrase, weight, category or
// pattern fails the whole load.
func New(def Definition) (*Taxonomy, error) {
	t := &Taxonomy{patterns: make(map[keyword.Category][]*regexp.Regexp, len(keyword.PatternCategories))}

	seen := make(map[string]bool, len(def.Phrases))
	for i, p := range def.Phrases {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: phrase %d is empty", domain.ErrInvalidTaxonomy, i)
		}
		if p.Weight <= 0 {
			return nil, fmt.Errorf("%w: phrase %q must have a positive weight, got %g",
				domain.ErrInvalidTaxonomy, text, p.Weight)
		}
		lower := strings.ToLower(text)
		if seen[lower] {
			return nil, fmt.Errorf("%w: duplicate phrase %q", domain.ErrInvalidTaxonomy, text)
		}
		seen[lower] = true

		re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(text))
		if err != nil {
			return nil, fmt.Errorf("%w: phrase %q: %w", domain.ErrInvalidTaxonomy, text, err)
		}
		t.phrases = append(t.phrases, compiledPhrase{Phrase: Phrase{Text: text, Weight: p.Weight}, re: re})
		t.maxWeight = max(t.maxWeight, p.Weight)
	}

	for _, set := range def.Patterns {
		if !set.Category.IsValid() || set.Category == keyword.Composite {
			return nil, fmt.Errorf("%w: %v cannot own patterns", domain.ErrInvalidTaxonomy, set.Category)
		}
		for _, expr := range set.Patterns {
			if strings.TrimSpace(expr) == "" {
				return nil, fmt.Errorf("%w: empty pattern in %v", domain.ErrInvalidTaxonomy, set.Category)
			}
			re, err := regexp.Compile(`(?im)` + expr)
			if err != nil {
				return nil, &domain.PatternError{Category: set.Category.String(), Pattern: expr, Err: err}
			}
			t.patterns[set.Category] = append(t.patterns[set.Category], re)
		}
	}

	for _, tpl := range def.Templates {
		if tpl = strings.TrimSpace(tpl); tpl != "" {
			t.templates = append(t.templates, tpl)
		}
	}

	t.version = fingerprint(def)
	return t, nil
}

// MustNew is New that panics on error. Intended for built-in definitions.
func MustNew(def Definition) *Taxonomy {
	t, err := New(def)
	if err != nil {
		panic(err)
	}
	return t
}

// Phrases returns the curated phrases in declaration order.
func (t *Taxonomy) Phrases() []Phrase {
	out := make([]Phrase, len(t.phrases))
	for i, p := range t.phrases {
		out[i] = p.Phrase
	}
	return out
}

// MaxWeight returns the highest curated weight (the confidence ceiling).
func (t *Taxonomy) MaxWeight() float64 { return t.maxWeight }

// PhraseConfidence normalizes a curated weight to [0, 1].
func (t *Taxonomy) PhraseConfidence(weight float64) float64 {
	if t.maxWeight <= 0 {
		return 0
	}
	return weight / t.maxWeight
}

// Patterns returns the compiled expressions of category c in declaration order.
func (t *Taxonomy) Patterns(c keyword.Category) []*regexp.Regexp { return t.patterns[c] }

// Templates returns the common query templates offered as suggestions.
func (t *Taxonomy) Templates() []string { return t.templates }

// Version identifies the taxonomy content. Annotations computed with a
// different version are stale.
func (t *Taxonomy) Version() string { return t.version }

// PhraseMatcher returns the case-insensitive literal matcher of phrase i.
func (t *Taxonomy) PhraseMatcher(i int) *regexp.Regexp { return t.phrases[i].re }

func fingerprint(def Definition) string {
	h := sha256.New()
	for _, p := range def.Phrases {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(p.Text))))
		h.Write([]byte{0})
		h.Write([]byte(strconv.FormatFloat(p.Weight, 'g', -1, 64)))
		h.Write([]byte{0})
	}
	for _, set := range def.Patterns {
		h.Write([]byte(set.Category.String()))
		for _, expr := range set.Patterns {
			h.Write([]byte{0})
			h.Write([]byte(expr))
		}
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))[:12]
}
