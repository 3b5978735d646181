package keyword

import "fmt"

// Category is the closed set of keyword kinds the detector emits.
type Category uint8

// Keyword categories. The zero value is not a valid category.
const (
	Composite Category = iota + 1
	LegalReference
	ZOTReference
	AnnexReference
	DistrictReference
	Environmental
)

// Categories lists every category in detection order.
var Categories = []Category{
	Composite, LegalReference, ZOTReference, AnnexReference, DistrictReference, Environmental,
}

// PatternCategories lists the categories detected through regular expressions.
var PatternCategories = Categories[1:]

// String returns the wire name of the category.
func (c Category) String() string {
	switch c {
	case Composite:
		return "composite"
	case LegalReference:
		return "legal_reference"
	case ZOTReference:
		return "zot_reference"
	case AnnexReference:
		return "annex_reference"
	case DistrictReference:
		return "district_reference"
	case Environmental:
		return "environmental"
	default:
		return fmt.Sprintf("category(%d)", uint8(c))
	}
}

// IsValid reports whether c is one of the declared categories.
func (c Category) IsValid() bool {
	return c >= Composite && c <= Environmental
}

// ParseCategory converts a wire name into a Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown keyword category %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, fmt.Errorf("invalid keyword category %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(b []byte) error {
	parsed, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// BaseConfidence is the starting confidence of a pattern match.
// Composite keywords take their confidence from the curated weight table instead.
func (c Category) BaseConfidence() float64 {
	switch c {
	case LegalReference:
		return 0.9
	case ZOTReference:
		return 0.8
	case AnnexReference:
		return 0.7
	case DistrictReference:
		return 0.85
	case Environmental:
		return 0.75
	case Composite:
		return 1.0
	default:
		return 0.5
	}
}

// PriorityWeight multiplies a keyword's confidence when scoring a fragment.
func (c Category) PriorityWeight() float64 {
	switch c {
	case Composite:
		return 3.0
	case LegalReference:
		return 2.0
	case ZOTReference:
		return 1.8
	case Environmental:
		return 1.5
	case DistrictReference:
		return 1.3
	case AnnexReference:
		return 1.0
	default:
		return 1.0
	}
}

// QueryMatchBonus is added on top of the base match score when a query keyword
// of this category appears in a fragment.
func (c Category) QueryMatchBonus() float64 {
	switch c {
	case Composite:
		return 0.4
	case LegalReference:
		return 0.3
	case ZOTReference:
		return 0.25
	case Environmental:
		return 0.2
	case DistrictReference:
		return 0.15
	case AnnexReference:
		return 0.1
	default:
		return 0.1
	}
}

// FragmentBonus is added to the keyword score for each keyword a fragment carries.
func (c Category) FragmentBonus() float64 {
	switch c {
	case Composite:
		return 0.1
	case LegalReference:
		return 0.05
	case ZOTReference, AnnexReference, DistrictReference, Environmental:
		return 0
	default:
		return 0
	}
}
