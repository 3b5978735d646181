package embedding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/kailas-cloud/plandex/internal/domain"
	"github.com/kailas-cloud/plandex/internal/metrics"
)

// BreakerConfig tunes the embedding circuit breaker.
type BreakerConfig struct {
	MaxRequests  uint32        // probes allowed while half-open
	Interval     time.Duration // closed-state counter reset period
	Timeout      time.Duration // open-state duration before probing
	MinRequests  uint32
	FailureRatio float64
}

// BreakerEmbedder stops calling an unhealthy provider so searches degrade fast
// to keyword-only retrieval instead of waiting on timeouts.
type BreakerEmbedder struct {
	inner domain.Embedder
	cb    *gobreaker.CircuitBreaker
}

// NewBreakerEmbedder wraps inner with a circuit breaker named after the provider.
func NewBreakerEmbedder(inner domain.Embedder, provider string, cfg BreakerConfig, logger *zap.Logger) *BreakerEmbedder {
	minRequests := max(cfg.MinRequests, 1)
	st := gobreaker.Settings{
		Name:        provider,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up or a spent budget is not a provider failure.
			return err == nil || errors.Is(err, context.Canceled) ||
				errors.Is(err, domain.ErrEmbeddingQuotaExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.EmbeddingBreakerState.WithLabelValues(name).Set(float64(to))
			logger.Warn("Embedding circuit breaker state changed",
				zap.String("provider", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}
	return &BreakerEmbedder{inner: inner, cb: gobreaker.NewCircuitBreaker(st)}
}

// Embed implements domain.Embedder.
func (b *BreakerEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Embed(ctx, text)
	})
	if err != nil {
		return domain.EmbeddingResult{}, breakerErr(err)
	}
	return res.(domain.EmbeddingResult), nil
}

// BatchEmbed implements domain.BatchEmbedder; one batch counts as one request.
func (b *BreakerEmbedder) BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error) {
	res, err := b.cb.Execute(func() (interface{}, error) {
		return domain.BatchEmbed(ctx, b.inner, texts)
	})
	if err != nil {
		return domain.BatchEmbeddingResult{}, breakerErr(err)
	}
	return res.(domain.BatchEmbeddingResult), nil
}

// State exposes the breaker state for health reporting.
func (b *BreakerEmbedder) State() gobreaker.State { return b.cb.State() }

func breakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("embedding provider: %w: %w", domain.ErrUpstreamUnavailable, err)
	}
	return err
}
