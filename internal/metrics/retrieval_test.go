package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterRetrievalMetrics_Idempotent(t *testing.T) {
	RegisterRetrievalMetrics()
	RegisterRetrievalMetrics()

	SearchDegradedTotal.WithLabelValues("keyword").Inc()
	if got := testutil.ToFloat64(SearchDegradedTotal.WithLabelValues("keyword")); got < 1 {
		t.Errorf("search_degraded_total = %v", got)
	}
}
