package chi

import (
	"fmt"
	"net/http"

	"github.com/kailas-cloud/plandex/internal/domain"
)

// ReplaceFragments handles PUT /v1/documents/{document}/fragments.
func (s *Server) ReplaceFragments(w http.ResponseWriter, r *http.Request) {
	var body ReplaceFragmentsRequest
	if !s.decode(w, r, &body) {
		return
	}
	if len(body.Fragments) == 0 {
		s.handleDomainError(w, fmt.Errorf("%w: fragments must not be empty", domain.ErrInvalidFragment))
		return
	}

	s.replace(w, r, body.Fragments)
}

// ReplaceText handles PUT /v1/documents/{document}/text. The text is split
// into fragments server-side.
func (s *Server) ReplaceText(w http.ResponseWriter, r *http.Request) {
	var body ReplaceTextRequest
	if !s.decode(w, r, &body) {
		return
	}

	fragments := s.deps.Splitter.Split(body.Text)
	if len(fragments) == 0 {
		s.handleDomainError(w, fmt.Errorf("%w: text must not be blank", domain.ErrInvalidFragment))
		return
	}

	s.replace(w, r, fragments)
}

func (s *Server) replace(w http.ResponseWriter, r *http.Request, fragments []string) {
	documentID := documentParam(r)
	ctx, usage := domain.NewContextWithUsage(r.Context())
	results := s.deps.Ingest.Replace(ctx, documentID, fragments)

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, replaceResultsToResponse(documentID, results))
}

// DeleteDocument handles DELETE /v1/documents/{document}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Ingest.Delete(r.Context(), documentParam(r)); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reannotate handles POST /v1/documents/{document}/reannotate.
func (s *Server) Reannotate(w http.ResponseWriter, r *http.Request) {
	documentID := documentParam(r)
	n, err := s.deps.Ingest.Reannotate(r.Context(), documentID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reannotateResponse{DocumentID: documentID, Updated: n})
}

// GetFragment handles GET /v1/documents/{document}/fragments/{index}.
func (s *Server) GetFragment(w http.ResponseWriter, r *http.Request) {
	key, err := fragmentKey(r)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	f, err := s.deps.Documents.Fragment(r.Context(), key)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fragmentToResponse(f))
}

// Summary handles GET /v1/documents/{document}/summary.
func (s *Server) Summary(w http.ResponseWriter, r *http.Request) {
	documentID := documentParam(r)
	sum, n, err := s.deps.Documents.Summary(r.Context(), documentID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryToResponse(documentID, n, &sum))
}

// Priority handles GET /v1/documents/{document}/priority?top=.
func (s *Server) Priority(w http.ResponseWriter, r *http.Request) {
	top, err := intQuery(r, "top")
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	frs, err := s.deps.Documents.Priority(r.Context(), documentParam(r), top)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fragmentsToResponse(frs))
}

// Filter handles POST /v1/documents/{document}/filter.
func (s *Server) Filter(w http.ResponseWriter, r *http.Request) {
	var body FilterRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Top < 0 {
		s.handleDomainError(w, fmt.Errorf("%w: top must be non-negative", domain.ErrInvalidQuery))
		return
	}

	frs, err := s.deps.Documents.Filter(r.Context(), documentParam(r), body.Query, body.Top)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, fragmentsToResponse(frs))
}
