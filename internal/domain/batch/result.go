package batch

import "github.com/kailas-cloud/plandex/internal/domain/fragment"

// ItemStatus is the processing outcome of a single fragment in an ingest batch.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of ingesting one fragment.
type Result struct {
	key           fragment.Key
	status        ItemStatus
	priorityScore float64
	keywordCount  int
	err           error
}

// NewOK creates a successful result carrying the fragment's annotation summary.
func NewOK(f fragment.Fragment) Result {
	a := f.Annotation()
	return Result{
		key:           f.Key(),
		status:        StatusOK,
		priorityScore: a.PriorityScore(),
		keywordCount:  len(a.Keywords()),
	}
}

// NewError creates a failed result.
func NewError(key fragment.Key, err error) Result {
	return Result{key: key, status: StatusError, err: err}
}

// Key returns the fragment identity.
func (r Result) Key() fragment.Key { return r.key }

// Status returns the processing outcome.
func (r Result) Status() ItemStatus { return r.status }

// PriorityScore returns the stored priority score (zero on error).
func (r Result) PriorityScore() float64 { return r.priorityScore }

// KeywordCount returns the number of keywords stored with the fragment.
func (r Result) KeywordCount() int { return r.keywordCount }

// Err returns the error, if any.
func (r Result) Err() error { return r.err }

// Count splits results into succeeded and failed totals.
func Count(results []Result) (succeeded, failed int) {
	for _, r := range results {
		if r.status == StatusOK {
			succeeded++
		} else {
			failed++
		}
	}
	return succeeded, failed
}
