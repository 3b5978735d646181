package metrics

import "github.com/prometheus/client_golang/prometheus"

// Retrieval Prometheus metrics.
var (
	SearchDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plandex",
			Name:      "search_degraded_total",
			Help:      "Searches answered without one candidate source",
		},
		[]string{"source"}, // "semantic" / "keyword"
	)

	FragmentsAnnotatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plandex",
			Name:      "fragments_annotated_total",
			Help:      "Fragments annotated with keyword metadata",
		},
		[]string{"status"}, // "ok" / "error"
	)

	AnalyzerCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "plandex",
			Name:      "analyzer_cache_total",
			Help:      "Query analysis cache hits and misses",
		},
		[]string{"result"},
	)
)

var retrievalMetricsRegistered bool

// RegisterRetrievalMetrics registers search and annotation metrics. Must be called once from main.
func RegisterRetrievalMetrics() {
	if retrievalMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchDegradedTotal)
	prometheus.MustRegister(FragmentsAnnotatedTotal)
	prometheus.MustRegister(AnalyzerCacheTotal)
	retrievalMetricsRegistered = true
}
