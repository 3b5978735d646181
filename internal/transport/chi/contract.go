package chi

import (
	"context"

	dombatch "github.com/kailas-cloud/plandex/internal/domain/batch"
	"github.com/kailas-cloud/plandex/internal/domain/fragment"
	domkw "github.com/kailas-cloud/plandex/internal/domain/keyword"
	"github.com/kailas-cloud/plandex/internal/domain/search/analysis"
	"github.com/kailas-cloud/plandex/internal/domain/search/request"
	"github.com/kailas-cloud/plandex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/plandex/internal/usecase/health"
	kwuc "github.com/kailas-cloud/plandex/internal/usecase/keyword"
	searchuc "github.com/kailas-cloud/plandex/internal/usecase/search"
	usageuc "github.com/kailas-cloud/plandex/internal/usecase/usage"
)

// Searcher runs hybrid and targeted searches.
type Searcher interface {
	Search(ctx context.Context, req *request.Request) (searchuc.Response, error)
	SearchByLegalReference(ctx context.Context, ref string, documentIDs []string) ([]result.Result, error)
	SearchByZOT(ctx context.Context, zot string, documentIDs []string) ([]result.Result, error)
	RetrieveContext(ctx context.Context, req *request.Request) ([]string, error)
}

// Analyzer classifies queries.
type Analyzer interface {
	Analyze(query string) analysis.Analysis
}

// Detector detects and scores keywords in free text.
type Detector interface {
	Detect(text string) []domkw.Keyword
	Score(kws []domkw.Keyword) fragment.Annotation
}

// Suggester completes partial queries.
type Suggester interface {
	Suggest(partial string) []string
}

// Ingester replaces and maintains the fragments of a document.
type Ingester interface {
	Replace(ctx context.Context, documentID string, texts []string) []dombatch.Result
	Reannotate(ctx context.Context, documentID string) (int, error)
	Delete(ctx context.Context, documentID string) error
}

// Splitter cuts plain document text into fragments.
type Splitter interface {
	Split(text string) []string
}

// Documents reads the annotated fragments of a document.
type Documents interface {
	Fragment(ctx context.Context, key fragment.Key) (fragment.Fragment, error)
	Summary(ctx context.Context, documentID string) (kwuc.Summary, int, error)
	Priority(ctx context.Context, documentID string, top int) ([]fragment.Fragment, error)
	Filter(ctx context.Context, documentID, query string, top int) ([]fragment.Fragment, error)
}

// UsageReporter reports embedding token consumption.
type UsageReporter interface {
	GetReport(ctx context.Context, period usageuc.Period) usageuc.Report
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
