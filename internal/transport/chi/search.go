package chi

import (
	"net/http"

	"github.com/kailas-cloud/plandex/internal/domain"
)

// Search handles POST /v1/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if !s.decode(w, r, &body) {
		return
	}

	req, err := s.searchRequest(body.Query, body.DocumentIDs, body.Limit, s.limits.DefaultLimit)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	resp, err := s.deps.Search.Search(ctx, &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, searchResponse{
		Analysis: analysisToResponse(&resp.Analysis),
		Results:  resultsToResponse(resp.Results),
		Degraded: resp.Degraded,
	})
}

// SearchLegal handles POST /v1/search/legal.
func (s *Server) SearchLegal(w http.ResponseWriter, r *http.Request) {
	var body LegalSearchRequest
	if !s.decode(w, r, &body) {
		return
	}

	results, err := s.deps.Search.SearchByLegalReference(r.Context(), body.Reference, body.DocumentIDs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultListResponse{Results: resultsToResponse(results)})
}

// SearchZOT handles POST /v1/search/zot.
func (s *Server) SearchZOT(w http.ResponseWriter, r *http.Request) {
	var body ZOTSearchRequest
	if !s.decode(w, r, &body) {
		return
	}

	results, err := s.deps.Search.SearchByZOT(r.Context(), body.ZOT, body.DocumentIDs)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultListResponse{Results: resultsToResponse(results)})
}

// Context handles POST /v1/context.
func (s *Server) Context(w http.ResponseWriter, r *http.Request) {
	var body SearchRequest
	if !s.decode(w, r, &body) {
		return
	}

	req, err := s.searchRequest(body.Query, body.DocumentIDs, body.MaxFragments, s.limits.ContextFragments)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	texts, err := s.deps.Search.RetrieveContext(ctx, &req)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setEmbeddingHeaders(w, usage)
	writeJSON(w, http.StatusOK, contextResponse{Fragments: nonNil(texts)})
}
