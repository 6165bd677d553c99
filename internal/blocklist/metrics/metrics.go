package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the blocklist gate.
type Metrics struct {
	// Gate checks by outcome: allowed, blocked, error, skipped
	Checks *prometheus.CounterVec
}

// New creates a new Metrics instance with all blocklist metrics registered.
func New() *Metrics {
	return &Metrics{
		Checks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sitegate_blocklist_checks_total",
			Help: "Total blocklist gate checks by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementChecks records one gate check outcome.
func (m *Metrics) IncrementChecks(outcome string) {
	if m != nil {
		m.Checks.WithLabelValues(outcome).Inc()
	}
}
