package fragment

import (
	"context"
	"testing"

	"github.com/kailas-cloud/plandex/internal/db"
	domfrag "github.com/kailas-cloud/plandex/internal/domain/fragment"
	domkw "github.com/kailas-cloud/plandex/internal/domain/keyword"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetMultiFn   func(ctx context.Context, items []db.HashSetItem) error
	hgetAllFn     func(ctx context.Context, key string) (map[string]string, error)
	delFn         func(ctx context.Context, keys ...string) error
	scanFn        func(ctx context.Context, pattern string) ([]string, error)
	createIndexFn func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFn func(ctx context.Context, name string) (bool, error)
	searchKNNFn   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchTextFn  func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	searchCountFn func(ctx context.Context, index, query string) (int, error)
}

func (m *mockStore) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if m.hsetMultiFn != nil {
		return m.hsetMultiFn(ctx, items)
	}
	return nil
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return map[string]string{}, nil
}

func (m *mockStore) Del(ctx context.Context, keys ...string) error {
	if m.delFn != nil {
		return m.delFn(ctx, keys...)
	}
	return nil
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	if m.createIndexFn != nil {
		return m.createIndexFn(ctx, def)
	}
	return nil
}

func (m *mockStore) IndexExists(ctx context.Context, name string) (bool, error) {
	if m.indexExistsFn != nil {
		return m.indexExistsFn(ctx, name)
	}
	return false, nil
}

func (m *mockStore) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if m.searchKNNFn != nil {
		return m.searchKNNFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if m.searchTextFn != nil {
		return m.searchTextFn(ctx, q)
	}
	return &db.SearchResult{}, nil
}

func (m *mockStore) SearchCount(ctx context.Context, index, query string) (int, error) {
	if m.searchCountFn != nil {
		return m.searchCountFn(ctx, index, query)
	}
	return 0, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, IndexConfig{VectorDim: 4}), ms
}

func testFragment(t *testing.T, docID string, idx int, content string) domfrag.Fragment {
	t.Helper()
	f, err := domfrag.New(docID, idx, content)
	if err != nil {
		t.Fatalf("new fragment: %v", err)
	}
	kws := []domkw.Keyword{
		domkw.New("altura máxima", domkw.Composite, 2, 13, 0.95, "a altura máxima"),
		domkw.New("Lei Complementar nº 434", domkw.LegalReference, 20, 23, 0.95, ""),
	}
	return f.WithAnnotation(domfrag.NewAnnotation(kws, 2.4, true, 1, "abc123"))
}

// entryFor renders a fragment as the search store would return it.
func entryFor(t *testing.T, f domfrag.Fragment) db.SearchEntry {
	t.Helper()
	fields, err := buildHashFields(f, nil)
	if err != nil {
		t.Fatalf("build fields: %v", err)
	}
	return db.SearchEntry{Key: fragmentKey(f.Key()), Fields: fields}
}
