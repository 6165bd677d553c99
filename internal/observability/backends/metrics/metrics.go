// Package metrics counts observability events by severity so alerting can
// watch for error-rate spikes without parsing logs.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"sitegate/internal/observability"
)

// Backend increments a Prometheus counter per delivered event.
type Backend struct {
	events *prometheus.CounterVec
}

// New creates the backend and registers its collector.
func New() *Backend {
	return &Backend{
		events: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "sitegate_observability_events_total",
			Help: "Total observability events emitted by severity",
		}, []string{"severity"}),
	}
}

// Deliver records the event severity.
func (b *Backend) Deliver(ctx context.Context, event observability.Event) error {
	b.events.WithLabelValues(event.Severity.String()).Inc()
	return nil
}
