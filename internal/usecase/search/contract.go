package search

import (
	"context"

	"github.com/kailas-cloud/plandex/internal/domain"
	"github.com/kailas-cloud/plandex/internal/domain/fragment"
	"github.com/kailas-cloud/plandex/internal/domain/search/analysis"
	"github.com/kailas-cloud/plandex/internal/domain/search/result"
)

// Repository defines the storage contract for candidate retrieval.
type Repository interface {
	// SearchKNN returns the k fragments nearest to vector, with similarity in [0, 1].
	SearchKNN(
		ctx context.Context, vector []float32, documentIDs []string, k int,
	) ([]result.Candidate, error)

	// SearchContaining returns fragments whose text contains any of terms
	// (case-insensitive), highest priority first. legalOnly restricts the
	// search to fragments carrying at least one legal reference.
	SearchContaining(
		ctx context.Context, terms []string, documentIDs []string, legalOnly bool, limit int,
	) ([]fragment.Fragment, error)
}

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Analyzer detects the domain keywords of a query.
type Analyzer interface {
	Analyze(query string) analysis.Analysis
}
