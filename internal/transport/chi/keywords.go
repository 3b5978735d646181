package chi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/kailas-cloud/plandex/internal/domain"
	"github.com/kailas-cloud/plandex/internal/domain/fragment"
)

// Analyze handles POST /v1/analyze.
func (s *Server) Analyze(w http.ResponseWriter, r *http.Request) {
	var body TextRequest
	if !s.decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Query) == "" {
		s.handleDomainError(w, fmt.Errorf("%w: query is required", domain.ErrInvalidQuery))
		return
	}

	a := s.deps.Analyzer.Analyze(body.Query)
	writeJSON(w, http.StatusOK, analysisToResponse(&a))
}

// Keywords handles POST /v1/keywords. Empty text yields an empty annotation.
func (s *Server) Keywords(w http.ResponseWriter, r *http.Request) {
	var body TextRequest
	if !s.decode(w, r, &body) {
		return
	}
	if len(body.Text) > fragment.MaxContentSize {
		s.handleDomainError(w, fmt.Errorf("%w: text too large (max %d bytes)",
			domain.ErrInvalidQuery, fragment.MaxContentSize))
		return
	}

	kws := s.deps.Detector.Detect(body.Text)
	writeJSON(w, http.StatusOK, annotationToResponse(s.deps.Detector.Score(kws)))
}

// Suggest handles GET /v1/suggest?q=.
func (s *Server) Suggest(w http.ResponseWriter, r *http.Request) {
	suggestions := s.deps.Suggester.Suggest(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, suggestResponse{Suggestions: nonNil(suggestions)})
}
