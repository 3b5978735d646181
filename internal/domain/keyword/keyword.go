package keyword

// Keyword is a detected occurrence of a domain term (immutable value object).
// Position and Length are measured in characters (runes) of the source text.
type Keyword struct {
	text       string
	category   Category
	position   int
	length     int
	confidence float64
	context    string
}

// New creates a keyword, clamping confidence to [0, 1].
func New(text string, category Category, position, length int, confidence float64, context string) Keyword {
	return Keyword{
		text:       text,
		category:   category,
		position:   position,
		length:     length,
		confidence: clamp01(confidence),
		context:    context,
	}
}

// Text returns the matched substring.
func (k Keyword) Text() string { return k.text }

// Category returns the keyword category.
func (k Keyword) Category() Category { return k.category }

// Position returns the character offset of the match.
func (k Keyword) Position() int { return k.position }

// Length returns the match length in characters.
func (k Keyword) Length() int { return k.length }

// End returns the exclusive end offset of the match.
func (k Keyword) End() int { return k.position + k.length }

// Confidence returns the detection confidence in [0, 1].
func (k Keyword) Confidence() float64 { return k.confidence }

// Context returns the text surrounding the match.
func (k Keyword) Context() string { return k.context }

// Overlaps reports whether two keywords share any character.
func (k Keyword) Overlaps(other Keyword) bool {
	return k.position < other.End() && other.position < k.End()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Set is the set of categories present in a keyword list.
type Set map[Category]bool

// CategoriesOf returns the categories present in kws.
func CategoriesOf(kws []Keyword) Set {
	s := make(Set, len(Categories))
	for _, k := range kws {
		s[k.category] = true
	}
	return s
}

// Has reports whether c is in the set.
func (s Set) Has(c Category) bool { return s[c] }

// Sorted returns the present categories in detection order.
func (s Set) Sorted() []Category {
	out := make([]Category, 0, len(s))
	for _, c := range Categories {
		if s[c] {
			out = append(out, c)
		}
	}
	return out
}
