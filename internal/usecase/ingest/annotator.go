package ingest

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/plandex/internal/domain/fragment"
)

// Annotator annotates the fragments of a document on a bounded worker pool.
// Each fragment is independent, so output order always matches input order.
type Annotator struct {
	pool      *ants.Pool
	detector  Detector
	annotated *prometheus.CounterVec
}

// NewAnnotator creates an annotator with poolSize workers (NumCPU when <= 0).
// annotated is a counter vec with label "status" ("ok"/"error") and may be nil.
func NewAnnotator(detector Detector, poolSize int, annotated *prometheus.CounterVec) (*Annotator, error) {
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create annotation pool: %w", err)
	}
	return &Annotator{pool: pool, detector: detector, annotated: annotated}, nil
}

// Release stops the worker pool.
func (a *Annotator) Release() {
	a.pool.Release()
}

// AnnotateAll returns frs with fresh annotations.
func (a *Annotator) AnnotateAll(ctx context.Context, frs []fragment.Fragment) ([]fragment.Fragment, error) {
	out := make([]fragment.Fragment, len(frs))
	var wg sync.WaitGroup
	var submitErr error

	for i := range frs {
		if err := ctx.Err(); err != nil {
			submitErr = err
			break
		}
		wg.Add(1)
		err := a.pool.Submit(func() {
			defer wg.Done()
			out[i] = a.detector.AnnotateFragment(frs[i])
		})
		if err != nil {
			wg.Done()
			submitErr = err
			break
		}
	}
	wg.Wait()

	if submitErr != nil {
		a.count("error", len(frs))
		if errors.Is(submitErr, context.Canceled) || errors.Is(submitErr, context.DeadlineExceeded) {
			return nil, fmt.Errorf("annotate fragments: %w", submitErr)
		}
		return nil, fmt.Errorf("submit annotation: %w", submitErr)
	}
	a.count("ok", len(frs))
	return out, nil
}

func (a *Annotator) count(status string, n int) {
	if a.annotated != nil && n > 0 {
		a.annotated.WithLabelValues(status).Add(float64(n))
	}
}
