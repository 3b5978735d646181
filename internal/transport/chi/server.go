package chi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/plandex/internal/domain"
	"github.com/kailas-cloud/plandex/internal/domain/fragment"
	"github.com/kailas-cloud/plandex/internal/domain/search/request"
	logpkg "github.com/kailas-cloud/plandex/internal/logger"
	"github.com/kailas-cloud/plandex/internal/metrics"
	healthuc "github.com/kailas-cloud/plandex/internal/usecase/health"
)

const maxBodyBytes = 8 << 20

// Limits bounds the result sizes a client may request.
type Limits struct {
	DefaultLimit     int
	MaxLimit         int
	ContextFragments int
}

// Deps are the use cases served over HTTP.
type Deps struct {
	Search    Searcher
	Analyzer  Analyzer
	Detector  Detector
	Suggester Suggester
	Ingest    Ingester
	Splitter  Splitter
	Documents Documents
	Usage     UsageReporter
	Health    HealthChecker
}

// Server serves the plandex HTTP API.
type Server struct {
	deps          Deps
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(deps Deps, limits Limits, logger *zap.Logger) *Server {
	if limits.MaxLimit <= 0 || limits.MaxLimit > request.MaxLimit {
		limits.MaxLimit = request.MaxLimit
	}
	if limits.DefaultLimit <= 0 || limits.DefaultLimit > limits.MaxLimit {
		limits.DefaultLimit = min(request.DefaultLimit, limits.MaxLimit)
	}
	if limits.ContextFragments <= 0 {
		limits.ContextFragments = 5
	}
	return &Server{
		deps:          deps,
		limits:        limits,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// Routes registers every endpoint on r.
func (s *Server) Routes(r chi.Router) {
	r.Get("/health", s.HealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Post("/search", s.Search)
		r.Post("/search/legal", s.SearchLegal)
		r.Post("/search/zot", s.SearchZOT)
		r.Post("/context", s.Context)
		r.Post("/analyze", s.Analyze)
		r.Post("/keywords", s.Keywords)
		r.Get("/suggest", s.Suggest)
		r.Get("/usage", s.Usage)

		r.Route("/documents/{document}", func(r chi.Router) {
			r.Use(s.validDocument)
			r.Delete("/", s.DeleteDocument)
			r.Put("/fragments", s.ReplaceFragments)
			r.Put("/text", s.ReplaceText)
			r.Get("/fragments/{index}", s.GetFragment)
			r.Post("/reannotate", s.Reannotate)
			r.Get("/summary", s.Summary)
			r.Get("/priority", s.Priority)
			r.Post("/filter", s.Filter)
		})
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.deps.Health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, healthResponse{
		Status:          string(report.Status),
		Checks:          checks,
		TaxonomyVersion: report.TaxonomyVersion,
	})
}

// decode reads a JSON body into v, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// searchRequest validates an explicitly provided limit (nil means default).
func (s *Server) searchRequest(query string, documentIDs []string, limit *int, def int) (request.Request, error) {
	n := def
	if limit != nil {
		if *limit <= 0 || *limit > s.limits.MaxLimit {
			return request.Request{}, fmt.Errorf("%w: limit must be between 1 and %d",
				domain.ErrInvalidQuery, s.limits.MaxLimit)
		}
		n = *limit
	}
	req, err := request.New(query, documentIDs, n)
	if err != nil {
		return request.Request{}, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err)
	}
	return req, nil
}

// validDocument rejects malformed document IDs before any handler runs.
func (s *Server) validDocument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		documentID := documentParam(r)
		if err := fragment.ValidateDocumentID(documentID); err != nil {
			s.handleDomainError(w, fmt.Errorf("%w: %w", domain.ErrInvalidQuery, err))
			return
		}
		ctx := logpkg.With(r.Context(), zap.String("document_id", documentID))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func documentParam(r *http.Request) string {
	return chi.URLParam(r, "document")
}

func intQuery(r *http.Request, name string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidQuery, name)
	}
	return n, nil
}

func setEmbeddingHeaders(w http.ResponseWriter, usage *domain.EmbeddingUsage) {
	if usage.Used() {
		w.Header().Set(metrics.EmbeddingTokensHeader, strconv.Itoa(usage.TotalTokens))
	}
}

func fragmentKey(r *http.Request) (fragment.Key, error) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 {
		return fragment.Key{}, fmt.Errorf("%w: fragment index must be a non-negative integer", domain.ErrInvalidQuery)
	}
	return fragment.Key{DocumentID: documentParam(r), Index: idx}, nil
}
