package keyword

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kailas-cloud/plandex/internal/domain/fragment"
	domkw "github.com/kailas-cloud/plandex/internal/domain/keyword"
)

const (
	topCompositeCount     = 5
	highPriorityThreshold = 1.0
	defaultFilterLimit    = 10
)

// Summary aggregates the keyword annotations of a document.
type Summary struct {
	TotalKeywords         int
	ByCategory            map[domkw.Category]int
	TopComposite          []string
	LegalReferences       []string
	HighPriorityFragments int
	AveragePriority       float64
}

// Summarize aggregates the annotations of frs.
func Summarize(frs []fragment.Fragment) Summary {
	s := Summary{ByCategory: make(map[domkw.Category]int, len(domkw.Categories))}
	for _, c := range domkw.Categories {
		s.ByCategory[c] = 0
	}

	var composite []domkw.Keyword
	seenLegal := make(map[string]bool)
	var prioritySum float64
	for _, f := range frs {
		ann := f.Annotation()
		prioritySum += ann.PriorityScore()
		if ann.PriorityScore() > highPriorityThreshold {
			s.HighPriorityFragments++
		}
		for _, k := range ann.Keywords() {
			s.TotalKeywords++
			s.ByCategory[k.Category()]++
			switch k.Category() {
			case domkw.Composite:
				composite = append(composite, k)
			case domkw.LegalReference:
				if !seenLegal[k.Text()] {
					seenLegal[k.Text()] = true
					s.LegalReferences = append(s.LegalReferences, k.Text())
				}
			}
		}
	}

	slices.SortStableFunc(composite, func(a, b domkw.Keyword) int {
		return cmp.Compare(b.Confidence(), a.Confidence())
	})
	for _, k := range composite[:min(topCompositeCount, len(composite))] {
		s.TopComposite = append(s.TopComposite, k.Text())
	}

	s.AveragePriority = prioritySum / float64(max(1, len(frs)))
	return s
}

// PriorityFragments returns the n highest priority fragments. Ties keep input order.
func PriorityFragments(frs []fragment.Fragment, n int) []fragment.Fragment {
	if n <= 0 || len(frs) == 0 {
		return nil
	}
	sorted := slices.Clone(frs)
	slices.SortStableFunc(sorted, byPriorityDesc)
	return sorted[:min(n, len(sorted))]
}

// FilterByQuery keeps the annotated fragments relevant to query, highest
// priority first. Query terms are the detected keyword texts, or the
// whitespace separated words when the query has no domain keywords.
// A non-positive limit selects the default of 10.
func (d *Detector) FilterByQuery(frs []fragment.Fragment, query string, limit int) []fragment.Fragment {
	if limit <= 0 {
		limit = defaultFilterLimit
	}
	terms := d.QueryTerms(query)
	if len(terms) == 0 {
		return nil
	}

	var out []fragment.Fragment
	for _, f := range frs {
		if matchesAny(f, terms) {
			out = append(out, f)
		}
	}
	slices.SortStableFunc(out, byPriorityDesc)
	return out[:min(limit, len(out))]
}

// QueryTerms returns the lowercase terms FilterByQuery looks for.
func (d *Detector) QueryTerms(query string) []string {
	kws := d.Detect(query)
	terms := make([]string, 0, len(kws))
	for _, k := range kws {
		terms = append(terms, strings.ToLower(k.Text()))
	}
	if len(terms) == 0 {
		for _, w := range strings.Fields(query) {
			terms = append(terms, strings.ToLower(w))
		}
	}
	return terms
}

func matchesAny(f fragment.Fragment, terms []string) bool {
	content := strings.ToLower(f.Content())
	for _, t := range terms {
		if strings.Contains(content, t) {
			return true
		}
		for _, k := range f.Annotation().Keywords() {
			if strings.Contains(strings.ToLower(k.Text()), t) {
				return true
			}
		}
	}
	return false
}

func byPriorityDesc(a, b fragment.Fragment) int {
	return cmp.Compare(b.Annotation().PriorityScore(), a.Annotation().PriorityScore())
}
