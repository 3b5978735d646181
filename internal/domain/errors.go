package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFragmentNotFound signals a missing fragment.
	ErrFragmentNotFound = errors.New("fragment not found")
	// ErrDocumentNotFound signals a document without stored fragments.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrInvalidQuery signals a malformed search or analysis request.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrInvalidFragment signals a fragment that cannot be stored.
	ErrInvalidFragment = errors.New("invalid fragment")
	// ErrInvalidTaxonomy signals a keyword taxonomy that failed to load.
	ErrInvalidTaxonomy = errors.New("invalid taxonomy")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrEmbeddingQuotaExceeded signals an exhausted embedding token budget.
	ErrEmbeddingQuotaExceeded = errors.New("embedding quota exceeded")
	// ErrUpstreamUnavailable signals that a retrieval backend is temporarily unavailable.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
)

// PatternError reports the taxonomy pattern that failed to compile.
type PatternError struct {
	Category string
	Pattern  string
	Err      error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("%s: category %s: pattern %q: %v", ErrInvalidTaxonomy.Error(), e.Category, e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() []error { return []error{ErrInvalidTaxonomy, e.Err} }
