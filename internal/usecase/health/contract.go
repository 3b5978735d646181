package health

import "context"

// DBPinger checks fragment store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks semantic similarity provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}
