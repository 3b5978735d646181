package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates search still answers, with keyword candidates only.
	Degraded Status = "degraded"
	// Unhealthy indicates the fragment store is down; no retrieval is possible.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status          Status
	Checks          map[string]CheckResult
	TaxonomyVersion string
}

// Service coordinates health checks.
type Service struct {
	db              DBPinger
	embedding       EmbeddingChecker
	taxonomyVersion string
}

// New creates a Service. embedding can be nil.
func New(db DBPinger, embedding EmbeddingChecker, taxonomyVersion string) *Service {
	return &Service{db: db, embedding: embedding, taxonomyVersion: taxonomyVersion}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
			status = Degraded
		} else {
			checks["embedding"] = CheckOK
		}
	}

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		status = Unhealthy
	} else {
		checks["database"] = CheckOK
	}

	return Report{Status: status, Checks: checks, TaxonomyVersion: s.taxonomyVersion}
}
