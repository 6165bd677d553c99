package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for analytics delivery.
type Metrics struct {
	Published prometheus.Counter
	Failed    prometheus.Counter
	Truncated prometheus.Counter
}

// New creates and registers all analytics metrics.
func New() *Metrics {
	return &Metrics{
		Published: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitegate_analytics_published_total",
			Help: "Total pageview events handed to the analytics backend",
		}),
		Failed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitegate_analytics_failed_total",
			Help: "Total pageview events that failed delivery",
		}),
		Truncated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "sitegate_analytics_truncated_total",
			Help: "Total pageview events whose properties were capped",
		}),
	}
}

// IncrementPublished records one handed-off event.
func (m *Metrics) IncrementPublished() {
	if m != nil {
		m.Published.Inc()
	}
}

// IncrementFailed records one failed delivery.
func (m *Metrics) IncrementFailed() {
	if m != nil {
		m.Failed.Inc()
	}
}

// IncrementTruncated records one property-capped event.
func (m *Metrics) IncrementTruncated() {
	if m != nil {
		m.Truncated.Inc()
	}
}
