package fragment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/plandex/internal/db"
	"github.com/kailas-cloud/plandex/internal/domain"
	domfrag "github.com/kailas-cloud/plandex/internal/domain/fragment"
	"github.com/kailas-cloud/plandex/internal/domain/search/result"
)

const (
	// containsOverfetch widens the token query, whose matches are then
	// narrowed by an exact substring check.
	containsOverfetch = 3
	listPageSize      = 500
)

// store is the consumer interface for fragments (ISP).
//
//nolint:interfacebloat // fragment repo needs hash, index and search operations
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	SearchCount(ctx context.Context, index, query string) (int, error)
}

// Repo stores annotated fragments as hashes under one FT index.
type Repo struct {
	store store
	index IndexConfig
}

// New creates a fragment repository.
func New(s store, cfg IndexConfig) *Repo {
	return &Repo{store: s, index: cfg}
}

// EnsureIndex creates the fragment index when it does not exist yet.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.store.IndexExists(ctx, indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}
	def, err := buildIndex(r.index)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if err := r.store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// UpsertMulti writes fragments with their vectors in one round-trip.
func (r *Repo) UpsertMulti(ctx context.Context, items []domfrag.Embedded) error {
	if len(items) == 0 {
		return nil
	}
	batch := make([]db.HashSetItem, len(items))
	for i, it := range items {
		if r.index.VectorDim > 0 && len(it.Vector) != r.index.VectorDim {
			return fmt.Errorf("fragment %s: %w: got %d, want %d",
				it.Fragment.Key(), domain.ErrVectorDimMismatch, len(it.Vector), r.index.VectorDim)
		}
		fields, err := buildHashFields(it.Fragment, it.Vector)
		if err != nil {
			return fmt.Errorf("fragment %s: %w", it.Fragment.Key(), err)
		}
		batch[i] = db.HashSetItem{Key: fragmentKey(it.Fragment.Key()), Fields: fields}
	}
	if err := r.store.HSetMulti(ctx, batch); err != nil {
		return fmt.Errorf("hset fragments: %w", err)
	}
	return nil
}

// UpdateAnnotations rewrites only the derived keyword fields of stored fragments.
func (r *Repo) UpdateAnnotations(ctx context.Context, frs []domfrag.Fragment) error {
	if len(frs) == 0 {
		return nil
	}
	batch := make([]db.HashSetItem, len(frs))
	for i, f := range frs {
		fields, err := annotationFields(f.Annotation())
		if err != nil {
			return fmt.Errorf("fragment %s: %w", f.Key(), err)
		}
		batch[i] = db.HashSetItem{Key: fragmentKey(f.Key()), Fields: fields}
	}
	if err := r.store.HSetMulti(ctx, batch); err != nil {
		return fmt.Errorf("hset annotations: %w", err)
	}
	return nil
}

// Get returns a single fragment.
func (r *Repo) Get(ctx context.Context, key domfrag.Key) (domfrag.Fragment, error) {
	k := fragmentKey(key)
	m, err := r.store.HGetAll(ctx, k)
	if err != nil {
		return domfrag.Fragment{}, fmt.Errorf("hgetall %s: %w", k, err)
	}
	if len(m) == 0 {
		return domfrag.Fragment{}, domain.ErrFragmentNotFound
	}
	f, err := parseHashFields(m)
	if err != nil {
		return domfrag.Fragment{}, fmt.Errorf("parse %s: %w", k, err)
	}
	return f, nil
}

// ListByDocument returns every fragment of a document in index order.
func (r *Repo) ListByDocument(ctx context.Context, documentID string) ([]domfrag.Fragment, error) {
	query := db.TagFilter(fieldDocumentID, documentID)

	var out []domfrag.Fragment
	for offset := 0; ; offset += listPageSize {
		res, err := r.store.SearchText(ctx, &db.TextQuery{
			IndexName:    indexName(),
			Query:        query,
			Offset:       offset,
			Limit:        listPageSize,
			SortBy:       fieldIndex,
			ReturnFields: returnFields,
		})
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", documentID, err)
		}
		frs, err := parseEntries(res.Entries)
		if err != nil {
			return nil, err
		}
		out = append(out, frs...)
		if len(res.Entries) < listPageSize || offset+listPageSize >= res.Total {
			return out, nil
		}
	}
}

// Count returns the number of stored fragments of a document.
func (r *Repo) Count(ctx context.Context, documentID string) (int, error) {
	n, err := r.store.SearchCount(ctx, indexName(), db.TagFilter(fieldDocumentID, documentID))
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", documentID, err)
	}
	return n, nil
}

// DeleteDocument removes every fragment of a document and reports how many were stored.
func (r *Repo) DeleteDocument(ctx context.Context, documentID string) (int, error) {
	// The ID becomes part of a SCAN MATCH pattern.
	if err := domfrag.ValidateDocumentID(documentID); err != nil {
		return 0, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	keys, err := r.store.Scan(ctx, keyPrefix()+documentID+":*")
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", documentID, err)
	}
	if err := r.store.Del(ctx, keys...); err != nil {
		return 0, fmt.Errorf("del %s: %w", documentID, err)
	}
	return len(keys), nil
}

// SearchKNN returns the k fragments closest to vector.
func (r *Repo) SearchKNN(
	ctx context.Context, vector []float32, documentIDs []string, k int,
) ([]result.Candidate, error) {
	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    indexName(),
		Filter:       db.TagFilter(fieldDocumentID, documentIDs...),
		VectorField:  fieldVector,
		Vector:       vector,
		K:            k,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	out := make([]result.Candidate, 0, len(res.Entries))
	for _, e := range res.Entries {
		f, err := parseHashFields(e.Fields)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Key, err)
		}
		out = append(out, result.Candidate{Fragment: f, Similarity: e.Score})
	}
	return out, nil
}

// SearchContaining returns up to limit fragments whose content contains any
// of terms, case-insensitively, highest priority first.
func (r *Repo) SearchContaining(
	ctx context.Context, terms []string, documentIDs []string, legalOnly bool, limit int,
) ([]domfrag.Fragment, error) {
	if limit <= 0 {
		return []domfrag.Fragment{}, nil
	}

	needles := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			needles = append(needles, t)
		}
	}
	phrases := db.PhraseAny(fieldContent, needles)
	if phrases == "" {
		return []domfrag.Fragment{}, nil
	}

	var legal string
	if legalOnly {
		legal = db.NumericAtLeast(fieldLegalCount, 1)
	}

	res, err := r.store.SearchText(ctx, &db.TextQuery{
		IndexName:    indexName(),
		Query:        db.And(phrases, db.TagFilter(fieldDocumentID, documentIDs...), legal),
		Limit:        limit * containsOverfetch,
		SortBy:       fieldPriority,
		SortDesc:     true,
		Verbatim:     true,
		ReturnFields: returnFields,
	})
	if err != nil {
		return nil, fmt.Errorf("containment search: %w", err)
	}

	frs, err := parseEntries(res.Entries)
	if err != nil {
		return nil, err
	}
	out := make([]domfrag.Fragment, 0, min(limit, len(frs)))
	for _, f := range frs {
		if !containsAny(strings.ToLower(f.Content()), needles) {
			continue
		}
		out = append(out, f)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func parseEntries(entries []db.SearchEntry) ([]domfrag.Fragment, error) {
	out := make([]domfrag.Fragment, 0, len(entries))
	for _, e := range entries {
		f, err := parseHashFields(e.Fields)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Key, err)
		}
		out = append(out, f)
	}
	return out, nil
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func fragmentKey(k domfrag.Key) string {
	return keyPrefix() + k.DocumentID + ":" + strconv.Itoa(k.Index)
}
