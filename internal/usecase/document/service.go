package document

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/plandex/internal/domain"
	"github.com/kailas-cloud/plandex/internal/domain/fragment"
	"github.com/kailas-cloud/plandex/internal/usecase/keyword"
)

// Default and maximum number of fragments returned by ranking views.
const (
	DefaultTop = 5
	MaxTop     = 100
)

// Service answers read-side questions about the fragments of a stored document.
type Service struct {
	repo   Repository
	filter Filter
}

// New creates a document service.
func New(repo Repository, filter Filter) *Service {
	return &Service{repo: repo, filter: filter}
}

// Fragment returns one stored fragment with its annotation.
func (s *Service) Fragment(ctx context.Context, key fragment.Key) (fragment.Fragment, error) {
	f, err := s.repo.Get(ctx, key)
	if err != nil {
		return fragment.Fragment{}, fmt.Errorf("get fragment %s: %w", key, err)
	}
	return f, nil
}

// Summary aggregates the keyword annotations of a document.
func (s *Service) Summary(ctx context.Context, documentID string) (keyword.Summary, int, error) {
	frs, err := s.list(ctx, documentID)
	if err != nil {
		return keyword.Summary{}, 0, err
	}
	return keyword.Summarize(frs), len(frs), nil
}

// Priority returns the top fragments of a document by priority score.
func (s *Service) Priority(ctx context.Context, documentID string, top int) ([]fragment.Fragment, error) {
	frs, err := s.list(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return keyword.PriorityFragments(frs, clampTop(top)), nil
}

// Filter returns the fragments of a document relevant to query, highest
// priority first. A non-positive top keeps the filter's own default.
func (s *Service) Filter(ctx context.Context, documentID, query string, top int) ([]fragment.Fragment, error) {
	frs, err := s.list(ctx, documentID)
	if err != nil {
		return nil, err
	}
	out := s.filter.FilterByQuery(frs, query, min(top, MaxTop))
	if out == nil {
		out = []fragment.Fragment{}
	}
	return out, nil
}

func (s *Service) list(ctx context.Context, documentID string) ([]fragment.Fragment, error) {
	frs, err := s.repo.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("list fragments: %w", err)
	}
	if len(frs) == 0 {
		return nil, domain.ErrDocumentNotFound
	}
	return frs, nil
}

func clampTop(top int) int {
	if top <= 0 {
		return DefaultTop
	}
	return min(top, MaxTop)
}
