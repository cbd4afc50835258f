package eligibility

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeAllowed         = "allowed"
	OutcomeWeekdayConflict = "weekday_conflict"
	OutcomeClubLimit       = "club_limit"
	OutcomeNotFound        = "not_found"
	OutcomeFailOpen        = "fail_open"
)

// Metrics counts validation outcomes. A nil *Metrics counts nothing.
type Metrics struct {
	outcomes *prometheus.CounterVec

	registerOnce sync.Once
}

// Register creates the collectors on registry.
func (m *Metrics) Register(registry prometheus.Registerer) {
	if m == nil || registry == nil {
		return
	}
	m.registerOnce.Do(func() {
		m.outcomes = promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "somoim_eligibility_checks_total",
			Help: "Eligibility checks by outcome",
		}, []string{"outcome"})
	})
}

func (m *Metrics) record(outcome string) {
	if m != nil && m.outcomes != nil {
		m.outcomes.WithLabelValues(outcome).Inc()
	}
}
