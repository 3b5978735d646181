// Package suggest offers typeahead completions from the keyword taxonomy.
package suggest

import (
	"strings"
	"unicode/utf8"

	"github.com/kailas-cloud/plandex/internal/domain/taxonomy"
)

const (
	minPartialRunes = 3
	maxSuggestions  = 10
)

// Service matches partial queries against curated phrases and templates.
type Service struct {
	candidates []string
	lowered    []string
}

// New builds the suggestion index: curated phrases in taxonomy order
// followed by the common query templates, without duplicates.
func New(tax *taxonomy.Taxonomy) *Service {
	s := &Service{}
	seen := make(map[string]bool)
	add := func(text string) {
		lower := strings.ToLower(text)
		if seen[lower] {
			return
		}
		seen[lower] = true
		s.candidates = append(s.candidates, text)
		s.lowered = append(s.lowered, lower)
	}
	for _, p := range tax.Phrases() {
		add(p.Text)
	}
	for _, tpl := range tax.Templates() {
		add(tpl)
	}
	return s
}

// Suggest returns at most 10 completions containing partial, case-insensitively.
// Partials shorter than 3 characters yield nothing.
func (s *Service) Suggest(partial string) []string {
	if utf8.RuneCountInString(partial) < minPartialRunes {
		return []string{}
	}
	needle := strings.ToLower(partial)

	out := make([]string, 0, maxSuggestions)
	for i, lower := range s.lowered {
		if strings.Contains(lower, needle) {
			out = append(out, s.candidates[i])
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}
