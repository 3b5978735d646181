package result

import "github.com/kailas-cloud/plandex/internal/domain/fragment"

// Result is a single ranked fragment.
type Result struct {
	fragment     fragment.Fragment
	similarity   float64
	keywordScore float64
	combined     float64
}

// New creates a search result.
func New(f fragment.Fragment, similarity, keywordScore, combined float64) Result {
	return Result{fragment: f, similarity: similarity, keywordScore: keywordScore, combined: combined}
}

// Fragment returns the ranked fragment.
func (r *Result) Fragment() fragment.Fragment { return r.fragment }

// SimilarityScore returns the semantic similarity signal.
func (r *Result) SimilarityScore() float64 { return r.similarity }

// KeywordScore returns the query-versus-fragment keyword signal.
func (r *Result) KeywordScore() float64 { return r.keywordScore }

// CombinedScore returns the fused ranking score. It may exceed 1.0 once
// categorical bonuses are applied.
func (r *Result) CombinedScore() float64 { return r.combined }

// Candidate is a fragment returned by semantic retrieval, before fusion.
type Candidate struct {
	Fragment   fragment.Fragment
	Similarity float64
}
