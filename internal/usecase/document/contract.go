package document

import (
	"context"

	"github.com/kailas-cloud/plandex/internal/domain/fragment"
)

// Repository reads stored fragments.
type Repository interface {
	Get(ctx context.Context, key fragment.Key) (fragment.Fragment, error)
	ListByDocument(ctx context.Context, documentID string) ([]fragment.Fragment, error)
}

// Filter selects the fragments relevant to a query.
type Filter interface {
	FilterByQuery(frs []fragment.Fragment, query string, limit int) []fragment.Fragment
}
