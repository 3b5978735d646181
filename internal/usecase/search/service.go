package search

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/plandex/internal/domain"
	"github.com/kailas-cloud/plandex/internal/domain/fragment"
	"github.com/kailas-cloud/plandex/internal/domain/search/analysis"
	"github.com/kailas-cloud/plandex/internal/domain/search/request"
	"github.com/kailas-cloud/plandex/internal/domain/search/result"
	"github.com/kailas-cloud/plandex/internal/logger"
)

// Fixed scores and caps of the targeted searches.
const (
	legalSimilarity = 0.8
	legalKeyword    = 1.0
	legalCombined   = 0.9
	legalMaxResults = 20

	zotSimilarity = 0.7
	zotKeyword    = 0.9
	zotCombined   = 0.8
	zotMaxResults = 15

	defaultCandidateMultiplier = 2
)

// Retrieval sources reported when a search degrades.
const (
	SourceSemantic = "semantic"
	SourceKeyword  = "keyword"
)

// Response is the outcome of a hybrid search.
type Response struct {
	Analysis analysis.Analysis
	Results  []result.Result
	// Degraded lists the retrieval sources that failed.
	Degraded []string
}

// Service runs hybrid keyword-aware searches over annotated fragments.
type Service struct {
	repo       Repository
	embed      Embedder
	analyzer   Analyzer
	multiplier int
	degraded   *prometheus.CounterVec
}

// New creates a search service. Each retrieval source fetches
// limit*multiplier candidates before fusion. degraded has label "source"
// and may be nil.
func New(
	repo Repository, embed Embedder, analyzer Analyzer,
	multiplier int, degraded *prometheus.CounterVec,
) *Service {
	if multiplier <= 0 {
		multiplier = defaultCandidateMultiplier
	}
	return &Service{repo: repo, embed: embed, analyzer: analyzer, multiplier: multiplier, degraded: degraded}
}

// Search analyzes the query, retrieves semantic and keyword candidates in
// parallel and fuses them. A failing source is skipped; when both fail the
// response carries no results. Only context cancellation is returned as an error.
func (s *Service) Search(ctx context.Context, req *request.Request) (Response, error) {
	a := s.analyzer.Analyze(req.Query())
	k := req.CandidateLimit(s.multiplier)

	// Sources degrade independently: a failure is recorded for its own source
	// and must not cancel the other, so the group has no shared context and
	// its goroutines never return an error.
	var (
		semantic           []result.Candidate
		keywordHits        []fragment.Fragment
		semErr, keywordErr error
		g                  errgroup.Group
	)
	g.Go(func() error {
		semantic, semErr = s.semanticCandidates(ctx, req.Query(), req.DocumentIDs(), k)
		return nil
	})
	g.Go(func() error {
		keywordHits, keywordErr = s.keywordCandidates(ctx, a.Terms(), req.DocumentIDs(), k)
		return nil
	})
	g.Wait() //nolint:errcheck // goroutines always return nil

	if err := ctx.Err(); err != nil {
		return Response{}, fmt.Errorf("search: %w", err)
	}

	resp := Response{Analysis: a}
	log := logger.FromContext(ctx)
	if semErr != nil {
		resp.Degraded = append(resp.Degraded, SourceSemantic)
		s.incDegraded(SourceSemantic)
		log.Warn("semantic retrieval failed", zap.Error(semErr))
	}
	if keywordErr != nil {
		resp.Degraded = append(resp.Degraded, SourceKeyword)
		s.incDegraded(SourceKeyword)
		log.Warn("keyword retrieval failed", zap.Error(keywordErr))
	}
	if semErr != nil && keywordErr != nil {
		log.Warn("all retrieval sources failed, returning no results")
		resp.Results = []result.Result{}
		return resp, nil
	}

	resp.Results = Fuse(semantic, keywordHits, a.Keywords(), req.Limit())
	return resp, nil
}

func (s *Service) semanticCandidates(
	ctx context.Context, query string, documentIDs []string, k int,
) ([]result.Candidate, error) {
	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	candidates, err := s.repo.SearchKNN(ctx, emb.Embedding, documentIDs, k)
	if err != nil {
		return nil, fmt.Errorf("search knn: %w", err)
	}
	return candidates, nil
}

// keywordCandidates fetches fragments containing any query keyword.
// Queries without domain keywords have no keyword candidates.
func (s *Service) keywordCandidates(
	ctx context.Context, terms []string, documentIDs []string, k int,
) ([]fragment.Fragment, error) {
	if len(terms) == 0 {
		return nil, nil
	}
	hits, err := s.repo.SearchContaining(ctx, terms, documentIDs, false, k)
	if err != nil {
		return nil, fmt.Errorf("search containing: %w", err)
	}
	return hits, nil
}

// SearchByLegalReference returns fragments citing ref, ordered by number of
// legal references and then priority. Scores are fixed.
func (s *Service) SearchByLegalReference(
	ctx context.Context, ref string, documentIDs []string,
) ([]result.Result, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: legal reference is required", domain.ErrInvalidQuery)
	}

	hits, err := s.repo.SearchContaining(ctx, []string{strings.ToLower(ref)}, documentIDs, true, legalMaxResults)
	if err != nil {
		return nil, fmt.Errorf("search legal reference: %w", err)
	}
	slices.SortStableFunc(hits, func(a, b fragment.Fragment) int {
		return cmp.Compare(b.Annotation().LegalReferenceCount(), a.Annotation().LegalReferenceCount())
	})
	return fixedResults(hits, legalMaxResults, legalSimilarity, legalKeyword, legalCombined), nil
}

// SearchByZOT returns fragments mentioning the zoning code zot in any of
// its usual spellings ("8.2", "zot 8.2", "zona 8.2", "zoneamento 8.2").
func (s *Service) SearchByZOT(
	ctx context.Context, zot string, documentIDs []string,
) ([]result.Result, error) {
	zot = strings.ToLower(strings.TrimSpace(zot))
	if zot == "" {
		return nil, fmt.Errorf("%w: zot reference is required", domain.ErrInvalidQuery)
	}

	terms := []string{zot, "zot " + zot, "zona " + zot, "zoneamento " + zot}
	hits, err := s.repo.SearchContaining(ctx, terms, documentIDs, false, zotMaxResults)
	if err != nil {
		return nil, fmt.Errorf("search zot: %w", err)
	}
	return fixedResults(hits, zotMaxResults, zotSimilarity, zotKeyword, zotCombined), nil
}

func fixedResults(hits []fragment.Fragment, limit int, similarity, keyword, combined float64) []result.Result {
	out := make([]result.Result, 0, min(limit, len(hits)))
	for _, f := range hits[:min(limit, len(hits))] {
		out = append(out, result.New(f, similarity, keyword, combined))
	}
	return out
}

// RetrieveContext returns the texts of the best fragments for query.
// When every retrieval source fails it falls back to a plain containment
// lookup of the whole query.
func (s *Service) RetrieveContext(
	ctx context.Context, req *request.Request,
) ([]string, error) {
	resp, err := s.Search(ctx, req)
	if err != nil {
		return nil, err
	}

	if len(resp.Degraded) < 2 {
		texts := make([]string, 0, len(resp.Results))
		for _, r := range resp.Results {
			texts = append(texts, r.Fragment().Content())
		}
		return texts, nil
	}

	hits, err := s.repo.SearchContaining(
		ctx, []string{strings.ToLower(req.Query())}, req.DocumentIDs(), false, req.Limit(),
	)
	if err != nil {
		logger.FromContext(ctx).Warn("context fallback failed", zap.Error(err))
		return []string{}, nil
	}
	texts := make([]string, 0, len(hits))
	for _, f := range hits[:min(req.Limit(), len(hits))] {
		texts = append(texts, f.Content())
	}
	return texts, nil
}

func (s *Service) incDegraded(source string) {
	if s.degraded != nil {
		s.degraded.WithLabelValues(source).Inc()
	}
}
