package request

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length in characters.
	MaxQueryLength = 2048
	DefaultLimit   = 10
	MaxLimit       = 50
	// MaxDocumentIDs bounds the document filter.
	MaxDocumentIDs = 100
)

// Request is a validated search query.
type Request struct {
	query       string
	documentIDs []string
	limit       int
}

// New validates and normalizes search parameters.
// Defaults: limit=10. Limit is clamped to MaxLimit; duplicate document IDs are dropped.
func New(query string, documentIDs []string, limit int) (Request, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if utf8.RuneCountInString(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if len(documentIDs) > MaxDocumentIDs {
		return Request{}, fmt.Errorf("too many document_ids (max %d)", MaxDocumentIDs)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	var ids []string
	seen := make(map[string]bool, len(documentIDs))
	for _, id := range documentIDs {
		if id == "" {
			return Request{}, fmt.Errorf("document_ids must not contain empty values")
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}

	return Request{query: query, documentIDs: ids, limit: limit}, nil
}

// Query returns the search query text.
func (r *Request) Query() string { return r.query }

// DocumentIDs returns the optional document filter (nil means all documents).
func (r *Request) DocumentIDs() []string { return r.documentIDs }

// Limit returns the maximum results to return.
func (r *Request) Limit() int { return r.limit }

// CandidateLimit returns how many candidates each retrieval path should fetch.
func (r *Request) CandidateLimit(multiplier int) int {
	if multiplier <= 0 {
		multiplier = 1
	}
	return r.limit * multiplier
}
