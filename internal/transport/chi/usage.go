package chi

import (
	"net/http"

	usageuc "github.com/kailas-cloud/plandex/internal/usecase/usage"
)

// Usage handles GET /v1/usage?period=day|month.
func (s *Server) Usage(w http.ResponseWriter, r *http.Request) {
	period, err := usageuc.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	var report usageuc.Report
	if s.deps.Usage != nil {
		report = s.deps.Usage.GetReport(r.Context(), period)
	} else {
		report = usageuc.New(nil).GetReport(r.Context(), period)
	}

	writeJSON(w, http.StatusOK, usageResponse{
		Period:          string(report.Period),
		PeriodStart:     report.Start.UnixMilli(),
		PeriodEnd:       report.End.UnixMilli(),
		TokensUsed:      report.Used,
		TokensLimit:     report.Limit,
		TokensRemaining: report.Remaining,
		Exhausted:       report.Exhausted,
	})
}
