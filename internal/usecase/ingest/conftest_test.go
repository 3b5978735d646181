package ingest

import (
	"context"
	"sync"
	"testing"

	"github.com/kailas-cloud/plandex/internal/domain"
	"github.com/kailas-cloud/plandex/internal/domain/fragment"
	"github.com/kailas-cloud/plandex/internal/domain/taxonomy"
	"github.com/kailas-cloud/plandex/internal/usecase/keyword"
)

type mockRepo struct {
	mu        sync.Mutex
	upserted  []fragment.Embedded
	updated   []fragment.Fragment
	deleted   []string
	stored    []fragment.Fragment
	upsertErr error
	deleteN   int
	deleteErr error
	listErr   error
}

func (m *mockRepo) UpsertMulti(_ context.Context, items []fragment.Embedded) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.upserted = append(m.upserted, items...)
	return nil
}

func (m *mockRepo) UpdateAnnotations(_ context.Context, frs []fragment.Fragment) error {
	m.updated = append(m.updated, frs...)
	return nil
}

func (m *mockRepo) ListByDocument(_ context.Context, _ string) ([]fragment.Fragment, error) {
	return m.stored, m.listErr
}

func (m *mockRepo) DeleteDocument(_ context.Context, documentID string) (int, error) {
	m.deleted = append(m.deleted, documentID)
	return m.deleteN, m.deleteErr
}

// mockEmbedder implements Embedder and domain.BatchEmbedder.
type mockEmbedder struct {
	dim        int
	err        error
	batchCalls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: make([]float32, m.dim), TotalTokens: 1}, nil
}

func (m *mockEmbedder) BatchEmbed(_ context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	m.batchCalls++
	if m.err != nil {
		return domain.BatchEmbeddingResult{}, m.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = make([]float32, m.dim)
	}
	return domain.BatchEmbeddingResult{Embeddings: out, TotalTokens: len(texts) * 2}, nil
}

func newTestService(t *testing.T) (*Service, *mockRepo, *mockEmbedder) {
	t.Helper()
	det := keyword.NewDetector(taxonomy.Default())
	ann, err := NewAnnotator(det, 4, nil)
	if err != nil {
		t.Fatalf("new annotator: %v", err)
	}
	t.Cleanup(ann.Release)

	repo := &mockRepo{}
	emb := &mockEmbedder{dim: 4}
	return New(repo, ann, det, emb), repo, emb
}
