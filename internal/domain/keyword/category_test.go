package keyword

import (
	"encoding/json"
	"testing"
)

func TestCategory_RoundTripNames(t *testing.T) {
	for _, c := range Categories {
		parsed, err := ParseCategory(c.String())
		if err != nil {
			t.Fatalf("ParseCategory(%q): %v", c.String(), err)
		}
		if parsed != c {
			t.Errorf("ParseCategory(%q) = %v, want %v", c.String(), parsed, c)
		}
	}
}

func TestCategory_Invalid(t *testing.T) {
	if Category(0).IsValid() {
		t.Error("zero category must be invalid")
	}
	if _, err := ParseCategory("zoning"); err == nil {
		t.Error("expected error for unknown category")
	}
	if _, err := json.Marshal(Category(42)); err == nil {
		t.Error("expected marshal error for invalid category")
	}
}

func TestCategory_JSON(t *testing.T) {
	data, err := json.Marshal(struct {
		C Category `json:"c"`
	}{C: ZOTReference})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"c":"zot_reference"}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var out struct {
		C Category `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"c":"annex_reference"}`), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.C != AnnexReference {
		t.Errorf("got %v", out.C)
	}
}

func TestCategory_Weights(t *testing.T) {
	tests := []struct {
		c        Category
		priority float64
		bonus    float64
		base     float64
	}{
		{Composite, 3.0, 0.4, 1.0},
		{LegalReference, 2.0, 0.3, 0.9},
		{ZOTReference, 1.8, 0.25, 0.8},
		{Environmental, 1.5, 0.2, 0.75},
		{DistrictReference, 1.3, 0.15, 0.85},
		{AnnexReference, 1.0, 0.1, 0.7},
	}
	for _, tc := range tests {
		if got := tc.c.PriorityWeight(); got != tc.priority {
			t.Errorf("%v.PriorityWeight() = %v, want %v", tc.c, got, tc.priority)
		}
		if got := tc.c.QueryMatchBonus(); got != tc.bonus {
			t.Errorf("%v.QueryMatchBonus() = %v, want %v", tc.c, got, tc.bonus)
		}
		if got := tc.c.BaseConfidence(); got != tc.base {
			t.Errorf("%v.BaseConfidence() = %v, want %v", tc.c, got, tc.base)
		}
	}
	if Category(0).PriorityWeight() != 1.0 {
		t.Error("unknown category weight must default to 1.0")
	}
}

func TestKeyword_ClampsConfidence(t *testing.T) {
	if k := New("x", LegalReference, 0, 1, 1.3, ""); k.Confidence() != 1 {
		t.Errorf("confidence = %v, want 1", k.Confidence())
	}
	if k := New("x", LegalReference, 0, 1, -0.2, ""); k.Confidence() != 0 {
		t.Errorf("confidence = %v, want 0", k.Confidence())
	}
}

func TestKeyword_Overlaps(t *testing.T) {
	a := New("abc", Composite, 0, 3, 1, "")
	b := New("cd", Composite, 2, 2, 1, "")
	c := New("de", Composite, 3, 2, 1, "")
	if !a.Overlaps(b) {
		t.Error("a and b should overlap")
	}
	if a.Overlaps(c) {
		t.Error("a and c are adjacent, not overlapping")
	}
}

func TestCategoriesOf(t *testing.T) {
	s := CategoriesOf([]Keyword{
		New("ZOT 8", ZOTReference, 0, 5, 0.8, ""),
		New("anexo 1", AnnexReference, 10, 7, 0.7, ""),
	})
	if !s.Has(ZOTReference) || !s.Has(AnnexReference) || s.Has(LegalReference) {
		t.Errorf("unexpected set: %v", s)
	}
	sorted := s.Sorted()
	if len(sorted) != 2 || sorted[0] != ZOTReference || sorted[1] != AnnexReference {
		t.Errorf("unexpected order: %v", sorted)
	}
}
