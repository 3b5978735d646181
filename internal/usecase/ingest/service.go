package ingest

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/plandex/internal/domain"
	dombatch "github.com/kailas-cloud/plandex/internal/domain/batch"
	"github.com/kailas-cloud/plandex/internal/domain/fragment"
)

// MaxFragments is the default limit of fragments per document upload.
const MaxFragments = 1000

// Service replaces the stored fragments of a document with freshly annotated
// and embedded ones, reporting the outcome per fragment.
type Service struct {
	repo         Repository
	annotator    *Annotator
	detector     Detector
	embed        Embedder
	maxFragments int
}

// New creates an ingest service.
func New(repo Repository, annotator *Annotator, detector Detector, embed Embedder) *Service {
	return &Service{
		repo:         repo,
		annotator:    annotator,
		detector:     detector,
		embed:        embed,
		maxFragments: MaxFragments,
	}
}

// WithMaxFragments configures the maximum number of fragments per upload.
func (s *Service) WithMaxFragments(n int) *Service {
	if n > 0 {
		s.maxFragments = n
	}
	return s
}

// Replace stores texts as fragments 0..n-1 of documentID, dropping whatever the
// document held before. Invalid fragments fail individually; a failure shared by
// the whole document (annotation, embedding, storage) fails every valid fragment.
// Existing fragments are only removed once the new ones are ready to be written.
func (s *Service) Replace(ctx context.Context, documentID string, texts []string) []dombatch.Result {
	results := make([]dombatch.Result, len(texts))

	if len(texts) > s.maxFragments {
		err := fmt.Errorf("document has %d fragments, max %d: %w", len(texts), s.maxFragments, domain.ErrInvalidFragment)
		for i := range texts {
			results[i] = dombatch.NewError(fragment.Key{DocumentID: documentID, Index: i}, err)
		}
		return results
	}

	valid := make([]fragment.Fragment, 0, len(texts))
	for i, text := range texts {
		f, err := fragment.New(documentID, i, text)
		if err != nil {
			results[i] = dombatch.NewError(
				fragment.Key{DocumentID: documentID, Index: i},
				fmt.Errorf("%w: %w", domain.ErrInvalidFragment, err),
			)
			continue
		}
		valid = append(valid, f)
	}
	if len(valid) == 0 {
		return results
	}

	fail := func(err error) []dombatch.Result {
		for _, f := range valid {
			results[f.Index()] = dombatch.NewError(f.Key(), err)
		}
		return results
	}

	annotated, err := s.annotator.AnnotateAll(ctx, valid)
	if err != nil {
		return fail(err)
	}

	contents := make([]string, len(annotated))
	for i, f := range annotated {
		contents[i] = f.Content()
	}
	emb, err := domain.BatchEmbed(ctx, s.embed, contents)
	if err != nil {
		return fail(fmt.Errorf("vectorize: %w", err))
	}
	if len(emb.Embeddings) != len(annotated) {
		return fail(fmt.Errorf("vectorize: got %d embeddings for %d fragments: %w",
			len(emb.Embeddings), len(annotated), domain.ErrEmbeddingProviderError))
	}
	domain.UsageFromContext(ctx).AddTokens(emb.TotalTokens)

	items := make([]fragment.Embedded, len(annotated))
	for i, f := range annotated {
		items[i] = fragment.Embedded{Fragment: f, Vector: emb.Embeddings[i]}
	}

	if _, err := s.repo.DeleteDocument(ctx, documentID); err != nil {
		return fail(fmt.Errorf("delete previous fragments: %w", err))
	}
	if err := s.repo.UpsertMulti(ctx, items); err != nil {
		return fail(fmt.Errorf("store fragments: %w", err))
	}

	for _, f := range annotated {
		results[f.Index()] = dombatch.NewOK(f)
	}
	return results
}

// Reannotate refreshes the annotations of fragments computed with an older
// taxonomy and returns how many were updated. Content and vectors are kept.
func (s *Service) Reannotate(ctx context.Context, documentID string) (int, error) {
	frs, err := s.repo.ListByDocument(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("list fragments: %w", err)
	}
	if len(frs) == 0 {
		return 0, domain.ErrDocumentNotFound
	}

	stale := make([]fragment.Fragment, 0, len(frs))
	for _, f := range frs {
		if s.detector.IsStale(f) {
			stale = append(stale, f)
		}
	}
	if len(stale) == 0 {
		return 0, nil
	}

	fresh, err := s.annotator.AnnotateAll(ctx, stale)
	if err != nil {
		return 0, err
	}
	if err := s.repo.UpdateAnnotations(ctx, fresh); err != nil {
		return 0, fmt.Errorf("update annotations: %w", err)
	}
	return len(fresh), nil
}

// Delete removes every fragment of a document.
func (s *Service) Delete(ctx context.Context, documentID string) error {
	n, err := s.repo.DeleteDocument(ctx, documentID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
