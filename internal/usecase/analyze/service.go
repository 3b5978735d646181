package analyze

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/plandex/internal/domain/search/analysis"
)

// Service classifies queries by the domain keywords they contain.
type Service struct {
	detector   Detector
	cache      *lru.Cache[string, analysis.Analysis]
	cacheTotal *prometheus.CounterVec
}

// New creates a query analyzer. A positive cacheSize enables an LRU of recent
// analyses keyed by the exact query text. cacheTotal has label "result"
// ("hit"/"miss") and may be nil.
func New(detector Detector, cacheSize int, cacheTotal *prometheus.CounterVec) (*Service, error) {
	s := &Service{detector: detector, cacheTotal: cacheTotal}
	if cacheSize > 0 {
		cache, err := lru.New[string, analysis.Analysis](cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create analysis cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Analyze detects the keywords of query and picks the retrieval strategy.
// Legal references win over zoning codes, which win over curated phrases.
func (s *Service) Analyze(query string) analysis.Analysis {
	if s.cache != nil {
		if a, ok := s.cache.Get(query); ok {
			s.inc("hit")
			return a
		}
		s.inc("miss")
	}

	a := analysis.New(query, s.detector.Detect(query))
	if s.cache != nil {
		s.cache.Add(query, a)
	}
	return a
}

func (s *Service) inc(result string) {
	if s.cacheTotal != nil {
		s.cacheTotal.WithLabelValues(result).Inc()
	}
}
