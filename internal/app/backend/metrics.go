package backend

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records backend call latency. A nil *Metrics records nothing.
type Metrics struct {
	duration *prometheus.HistogramVec

	registerOnce sync.Once
}

// Register creates the collectors on registry.
func (m *Metrics) Register(registry prometheus.Registerer) {
	if m == nil || registry == nil {
		return
	}
	m.registerOnce.Do(func() {
		m.duration = promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "somoim_backend_request_duration_seconds",
			Help:    "Latency of backend API calls",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"})
	})
}

func (m *Metrics) observe(method, route, status string, d time.Duration) {
	if m != nil && m.duration != nil {
		m.duration.WithLabelValues(method, route, status).Observe(d.Seconds())
	}
}
