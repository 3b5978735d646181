package plandex

// Category is the kind of a detected keyword.
type Category string

// Keyword categories.
const (
	CategoryComposite         Category = "composite"
	CategoryLegalReference    Category = "legal_reference"
	CategoryZOTReference      Category = "zot_reference"
	CategoryAnnexReference    Category = "annex_reference"
	CategoryDistrictReference Category = "district_reference"
	CategoryEnvironmental     Category = "environmental"
)

// Strategy is the retrieval strategy suggested for a query.
type Strategy string

// Query strategies, in precedence order.
const (
	StrategyLegalReference  Strategy = "legal_reference"
	StrategyZoningSpecific  Strategy = "zoning_specific"
	StrategyTechnicalTerm   Strategy = "technical_term"
	StrategyGeneralSemantic Strategy = "general_semantic"
)

// Keyword is a domain term found in text. Position and Length count runes.
type Keyword struct {
	Text       string
	Category   Category
	Position   int
	Length     int
	Confidence float64
	Context    string
}

// Score is the keyword annotation of a fragment.
type Score struct {
	Keywords            []Keyword
	PriorityScore       float64
	HasComposite        bool
	LegalReferenceCount int
}

// Analysis is the classification of a query.
type Analysis struct {
	Keywords   []Keyword
	Categories []Category
	Strategy   Strategy
}

// Fragment is a piece of a document identified by document and position.
type Fragment struct {
	DocumentID string
	Index      int
	Content    string
}

// SemanticHit is a fragment returned by a vector search with its similarity in [0, 1].
type SemanticHit struct {
	Fragment   Fragment
	Similarity float64
}

// RankedFragment is one entry of a fused ranking.
type RankedFragment struct {
	Fragment        Fragment
	Score           Score
	SimilarityScore float64
	KeywordScore    float64
	CombinedScore   float64
}

// AnnotatedFragment is a fragment with its keyword annotation.
type AnnotatedFragment struct {
	Fragment Fragment
	Score    Score
}

// Summary aggregates the annotations of a set of fragments.
type Summary struct {
	TotalKeywords         int
	ByCategory            map[Category]int
	TopComposite          []string
	LegalReferences       []string
	HighPriorityFragments int
	AveragePriority       float64
}
