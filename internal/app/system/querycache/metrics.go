package querycache

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts cache traffic by scope (the first key element). A nil
// *Metrics is valid and counts nothing.
type Metrics struct {
	hits          *prometheus.CounterVec
	misses        *prometheus.CounterVec
	invalidations *prometheus.CounterVec

	registerOnce sync.Once
}

// Register creates the collectors on registry. It is a no-op when registry is
// nil and only the first call has an effect.
func (m *Metrics) Register(registry prometheus.Registerer) {
	if m == nil || registry == nil {
		return
	}
	m.registerOnce.Do(func() {
		factory := promauto.With(registry)

		m.hits = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "somoim_query_cache_hits_total",
			Help: "Total number of query cache hits",
		}, []string{"scope"})

		m.misses = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "somoim_query_cache_misses_total",
			Help: "Total number of query cache misses",
		}, []string{"scope"})

		m.invalidations = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "somoim_query_cache_invalidated_entries_total",
			Help: "Total number of entries removed by invalidation",
		}, []string{"scope"})
	})
}

func scope(k Key) string {
	if len(k) == 0 {
		return "all"
	}
	return k[0]
}

func (m *Metrics) hit(k Key) {
	if m != nil && m.hits != nil {
		m.hits.WithLabelValues(scope(k)).Inc()
	}
}

func (m *Metrics) miss(k Key) {
	if m != nil && m.misses != nil {
		m.misses.WithLabelValues(scope(k)).Inc()
	}
}

func (m *Metrics) invalidated(prefix Key, n int) {
	if m != nil && m.invalidations != nil && n > 0 {
		m.invalidations.WithLabelValues(scope(prefix)).Add(float64(n))
	}
}
