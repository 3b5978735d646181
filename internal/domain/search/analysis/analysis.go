package analysis

import (
	"strings"

	"github.com/kailas-cloud/plandex/internal/domain/keyword"
)

// Strategy is the retrieval strategy inferred from a query.
type Strategy string

// Strategies in precedence order.
const (
	LegalReference  Strategy = "legal_reference"
	ZoningSpecific  Strategy = "zoning_specific"
	TechnicalTerm   Strategy = "technical_term"
	GeneralSemantic Strategy = "general_semantic"
)

// IsValid checks if the strategy is one of the supported values.
func (s Strategy) IsValid() bool {
	return s == LegalReference || s == ZoningSpecific || s == TechnicalTerm || s == GeneralSemantic
}

// Classify picks the strategy for a set of detected categories.
// Legal citations dominate, then zoning codes, then curated phrases.
func Classify(categories keyword.Set) Strategy {
	switch {
	case categories.Has(keyword.LegalReference):
		return LegalReference
	case categories.Has(keyword.ZOTReference):
		return ZoningSpecific
	case categories.Has(keyword.Composite):
		return TechnicalTerm
	default:
		return GeneralSemantic
	}
}

// Analysis is the ephemeral result of analyzing a user query.
type Analysis struct {
	query      string
	keywords   []keyword.Keyword
	categories keyword.Set
	strategy   Strategy
}

// New builds an analysis from the resolved query keywords.
func New(query string, kws []keyword.Keyword) Analysis {
	cats := keyword.CategoriesOf(kws)
	return Analysis{query: query, keywords: kws, categories: cats, strategy: Classify(cats)}
}

// Query returns the analyzed query text.
func (a *Analysis) Query() string { return a.query }

// Keywords returns the resolved query keywords.
func (a *Analysis) Keywords() []keyword.Keyword { return a.keywords }

// Has reports whether the query contains a keyword of category c.
func (a *Analysis) Has(c keyword.Category) bool { return a.categories.Has(c) }

// Categories returns the present categories in detection order.
func (a *Analysis) Categories() []keyword.Category { return a.categories.Sorted() }

// Strategy returns the inferred retrieval strategy.
func (a *Analysis) Strategy() Strategy { return a.strategy }

// Terms returns the lowercase keyword texts, falling back to nil when
// the query carried no domain keywords.
func (a *Analysis) Terms() []string {
	if len(a.keywords) == 0 {
		return nil
	}
	terms := make([]string, len(a.keywords))
	for i, k := range a.keywords {
		terms[i] = strings.ToLower(k.Text())
	}
	return terms
}
