package embedding

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/kailas-cloud/plandex/internal/domain"
)

func testBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Hour,
		MinRequests:  2,
		FailureRatio: 0.5,
	}
}

func TestBreakerEmbedder_PassesThrough(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}, TotalTokens: 3}}
	b := NewBreakerEmbedder(inner, "breaker-pass", testBreakerConfig(), zap.NewNop())

	res, err := b.Embed(context.Background(), "zona")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.TotalTokens != 3 {
		t.Errorf("tokens = %d", res.TotalTokens)
	}
	batch, err := b.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil || len(batch.Embeddings) != 2 {
		t.Fatalf("batch: %v %v", batch, err)
	}
}

func TestBreakerEmbedder_OpensAfterFailures(t *testing.T) {
	inner := &plainMockEmbedder{err: domain.ErrEmbeddingProviderError}
	b := NewBreakerEmbedder(inner, "breaker-open", testBreakerConfig(), zap.NewNop())
	ctx := context.Background()

	for range 2 {
		if _, err := b.Embed(ctx, "zona"); !errors.Is(err, domain.ErrEmbeddingProviderError) {
			t.Fatalf("expected provider error, got %v", err)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("state = %s, want open", b.State())
	}

	_, err := b.Embed(ctx, "zona")
	if !errors.Is(err, domain.ErrUpstreamUnavailable) {
		t.Fatalf("expected ErrUpstreamUnavailable, got %v", err)
	}
	if inner.calls != 2 {
		t.Errorf("open breaker must not call the provider, calls=%d", inner.calls)
	}
}

func TestBreakerEmbedder_CancellationIsNotFailure(t *testing.T) {
	inner := &plainMockEmbedder{err: context.Canceled}
	b := NewBreakerEmbedder(inner, "breaker-cancel", testBreakerConfig(), zap.NewNop())

	for range 3 {
		_, _ = b.Embed(context.Background(), "zona")
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("state = %s, want closed", b.State())
	}
}

func TestBreakerEmbedder_QuotaIsNotFailure(t *testing.T) {
	inner := &plainMockEmbedder{err: fmt.Errorf("budget check: %w", domain.ErrEmbeddingQuotaExceeded)}
	b := NewBreakerEmbedder(inner, "breaker-quota", testBreakerConfig(), zap.NewNop())

	for range 3 {
		if _, err := b.Embed(context.Background(), "zona"); !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
			t.Fatalf("expected quota error, got %v", err)
		}
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("state = %s, want closed", b.State())
	}
}
