package taxonomy

import (
	"errors"
	"testing"

	"github.com/kailas-cloud/plandex/internal/domain"
	"github.com/kailas-cloud/plandex/internal/domain/keyword"
)

func TestDefault_Compiles(t *testing.T) {
	tx := Default()
	if len(tx.Phrases()) != 23 {
		t.Errorf("phrases = %d, want 23", len(tx.Phrases()))
	}
	if tx.MaxWeight() != 10.0 {
		t.Errorf("max weight = %v, want 10", tx.MaxWeight())
	}
	for _, c := range keyword.PatternCategories {
		if len(tx.Patterns(c)) == 0 {
			t.Errorf("no patterns for %v", c)
		}
	}
	if len(tx.Patterns(keyword.Composite)) != 0 {
		t.Error("composite must not own patterns")
	}
	if len(tx.Templates()) != 9 {
		t.Errorf("templates = %d", len(tx.Templates()))
	}
}

func TestDefault_HeightSynonymsComparable(t *testing.T) {
	tx := Default()
	weights := make(map[string]float64)
	for _, p := range tx.Phrases() {
		weights[p.Text] = p.Weight
	}
	maxHeight := tx.PhraseConfidence(weights["altura máxima"])
	for _, syn := range []string{"gabarito máximo", "limite de altura", "elevação máxima"} {
		w, ok := weights[syn]
		if !ok {
			t.Fatalf("missing synonym %q", syn)
		}
		if diff := maxHeight - tx.PhraseConfidence(w); diff < 0 || diff > 0.1 {
			t.Errorf("%q confidence too far from altura máxima: diff %v", syn, diff)
		}
	}
}

func TestNew_InvalidPatternFailsWholeLoad(t *testing.T) {
	def := DefaultDefinition()
	def.Patterns[1].Patterns = append(def.Patterns[1].Patterns, `zot(\d+`)

	tx, err := New(def)
	if err == nil {
		t.Fatal("expected error")
	}
	if tx != nil {
		t.Error("no partial taxonomy may be returned")
	}
	if !errors.Is(err, domain.ErrInvalidTaxonomy) {
		t.Errorf("expected ErrInvalidTaxonomy, got %v", err)
	}
	var pe *domain.PatternError
	if !errors.As(err, &pe) || pe.Pattern != `zot(\d+` {
		t.Errorf("expected PatternError for the bad pattern, got %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{"empty phrase", Definition{Phrases: []Phrase{{" ", 1}}}},
		{"zero weight", Definition{Phrases: []Phrase{{"taxa de ocupação", 0}}}},
		{"duplicate phrase", Definition{Phrases: []Phrase{{"Taxa de ocupação", 1}, {"taxa de ocupação", 2}}}},
		{"composite patterns", Definition{Patterns: []PatternSet{{keyword.Composite, []string{"x"}}}}},
		{"invalid category", Definition{Patterns: []PatternSet{{keyword.Category(0), []string{"x"}}}}},
		{"empty pattern", Definition{Patterns: []PatternSet{{keyword.ZOTReference, []string{""}}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := New(tc.def); !errors.Is(err, domain.ErrInvalidTaxonomy) {
				t.Errorf("expected ErrInvalidTaxonomy, got %v", err)
			}
		})
	}
}

func TestVersion_TracksContent(t *testing.T) {
	a := Default()
	b := Default()
	if a.Version() != b.Version() {
		t.Error("identical definitions must share a version")
	}

	def := DefaultDefinition()
	def.Phrases[0].Weight = 9.9
	c := MustNew(def)
	if c.Version() == a.Version() {
		t.Error("changed weight must change the version")
	}
}

func TestPhraseConfidence_EmptyTable(t *testing.T) {
	tx := MustNew(Definition{})
	if tx.PhraseConfidence(5) != 0 {
		t.Error("empty phrase table must yield zero confidence")
	}
}
