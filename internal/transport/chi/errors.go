package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/kailas-cloud/plandex/internal/domain"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeDocumentNotFound       ErrorCode = "document_not_found"
	CodeFragmentNotFound       ErrorCode = "fragment_not_found"
	CodeVectorDimMismatch      ErrorCode = "vector_dim_mismatch"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeEmbeddingQuotaExceeded ErrorCode = "embedding_quota_exceeded"
	CodeUpstreamUnavailable    ErrorCode = "upstream_unavailable"
	CodeInternalError          ErrorCode = "internal_error"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// sentinels maps domain errors to responses. Validation errors are built from
// client input, so their full message is returned.
var sentinels = []struct {
	err    error
	status int
	code   ErrorCode
	expose bool
}{
	{domain.ErrFragmentNotFound, http.StatusNotFound, CodeFragmentNotFound, false},
	{domain.ErrDocumentNotFound, http.StatusNotFound, CodeDocumentNotFound, false},
	{domain.ErrInvalidQuery, http.StatusBadRequest, CodeValidationFailed, true},
	{domain.ErrInvalidFragment, http.StatusBadRequest, CodeValidationFailed, true},
	{domain.ErrVectorDimMismatch, http.StatusBadRequest, CodeVectorDimMismatch, false},
	{domain.ErrEmbeddingQuotaExceeded, http.StatusTooManyRequests, CodeEmbeddingQuotaExceeded, false},
	{domain.ErrUpstreamUnavailable, http.StatusServiceUnavailable, CodeUpstreamUnavailable, false},
	{domain.ErrEmbeddingProviderError, http.StatusBadGateway, CodeEmbeddingProviderError, false},
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func defaultErrorHandlers() []errorHandler {
	hs := make([]errorHandler, len(sentinels))
	for i, s := range sentinels {
		hs[i] = sentinelHandler(s.err, s.status, s.code)
	}
	return hs
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "internal error")
}

// errorCode maps a per-item error to its code.
func errorCode(err error) ErrorCode {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.code
		}
	}
	return CodeInternalError
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			if s.expose {
				return err.Error()
			}
			return s.err.Error()
		}
	}
	return "internal error"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
