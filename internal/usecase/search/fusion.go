package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/kailas-cloud/plandex/internal/domain/fragment"
	domkw "github.com/kailas-cloud/plandex/internal/domain/keyword"
	"github.com/kailas-cloud/plandex/internal/domain/search/result"
)

// Fusion weights. The categorical bonuses are added after the weighted sum,
// so a combined score may exceed 1.
const (
	similarityWeight = 0.4
	keywordWeight    = 0.4
	priorityWeight   = 0.2

	compositeBonus = 0.10
	legalBonus     = 0.05

	keywordOnlySimilarity = 0.3
	queryMatchBase        = 0.3
)

// Fuse merges semantic and keyword candidates into one ranked list.
// Fragments are deduplicated by (document, index); semantic candidates keep
// their similarity while keyword-only ones get a fixed baseline. The keyword
// score is recomputed for every fragment from the query keywords.
func Fuse(
	semantic []result.Candidate, keywordHits []fragment.Fragment,
	queryKeywords []domkw.Keyword, limit int,
) []result.Result {
	if limit <= 0 || len(semantic)+len(keywordHits) == 0 {
		return []result.Result{}
	}

	seen := make(map[fragment.Key]bool, len(semantic)+len(keywordHits))
	merged := make([]result.Candidate, 0, len(semantic)+len(keywordHits))
	for _, c := range semantic {
		if seen[c.Fragment.Key()] {
			continue
		}
		seen[c.Fragment.Key()] = true
		merged = append(merged, c)
	}
	for _, f := range keywordHits {
		if seen[f.Key()] {
			continue
		}
		seen[f.Key()] = true
		merged = append(merged, result.Candidate{Fragment: f, Similarity: keywordOnlySimilarity})
	}

	results := make([]result.Result, 0, len(merged))
	for _, c := range merged {
		kw := KeywordScore(c.Fragment, queryKeywords)
		results = append(results, result.New(c.Fragment, c.Similarity, kw, combinedScore(c.Fragment, c.Similarity, kw)))
	}

	slices.SortStableFunc(results, func(a, b result.Result) int {
		return cmp.Compare(b.CombinedScore(), a.CombinedScore())
	})
	return results[:min(limit, len(results))]
}

// KeywordScore rates how well f covers the query keywords, in [0, 1].
// A query without keywords scores 0.
func KeywordScore(f fragment.Fragment, queryKeywords []domkw.Keyword) float64 {
	if len(queryKeywords) == 0 {
		return 0
	}
	content := strings.ToLower(f.Content())

	var score float64
	for _, q := range queryKeywords {
		if strings.Contains(content, strings.ToLower(q.Text())) {
			score += queryMatchBase + q.Category().QueryMatchBonus()
		}
	}
	for _, k := range f.Annotation().Keywords() {
		score += k.Category().FragmentBonus()
	}
	return min(1, max(0, score))
}

func combinedScore(f fragment.Fragment, similarity, keywordScore float64) float64 {
	ann := f.Annotation()
	score := similarityWeight*similarity +
		keywordWeight*keywordScore +
		priorityWeight*min(1, ann.PriorityScore())
	if ann.HasComposite() {
		score += compositeBonus
	}
	if ann.LegalReferenceCount() > 0 {
		score += legalBonus
	}
	return score
}
