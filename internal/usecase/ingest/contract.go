package ingest

import (
	"context"

	"github.com/kailas-cloud/plandex/internal/domain"
	"github.com/kailas-cloud/plandex/internal/domain/fragment"
)

// Repository defines the fragment storage contract used during ingestion.
type Repository interface {
	UpsertMulti(ctx context.Context, items []fragment.Embedded) error
	UpdateAnnotations(ctx context.Context, frs []fragment.Fragment) error
	ListByDocument(ctx context.Context, documentID string) ([]fragment.Fragment, error)
	DeleteDocument(ctx context.Context, documentID string) (int, error)
}

// Detector annotates fragments with keyword metadata.
type Detector interface {
	AnnotateFragment(f fragment.Fragment) fragment.Fragment
	IsStale(f fragment.Fragment) bool
}

// Embedder vectorizes fragment text. Implementations that also satisfy
// domain.BatchEmbedder are called once per document.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
