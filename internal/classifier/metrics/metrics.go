package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the classifier.
type Metrics struct {
	// Classifications by outcome: admitted, denied, apex, asset, gate_error
	Outcomes *prometheus.CounterVec

	// Full classification latency including the gate lookup
	ClassifyLatency prometheus.Histogram
}

// New creates a new Metrics instance with all classifier metrics registered.
func New() *Metrics {
	return &Metrics{
		Outcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sitegate_classifications_total",
			Help: "Total request classifications by outcome",
		}, []string{"outcome"}),

		ClassifyLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "sitegate_classify_duration_seconds",
			Help:    "Duration of full request classification including the blocklist lookup",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5},
		}),
	}
}

// IncrementOutcome records a classification outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.Outcomes.WithLabelValues(outcome).Inc()
	}
}

// ObserveClassifyLatency records the total classification duration.
func (m *Metrics) ObserveClassifyLatency(d time.Duration) {
	if m != nil {
		m.ClassifyLatency.Observe(d.Seconds())
	}
}
