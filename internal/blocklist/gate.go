package blocklist

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sitegate/internal/blocklist/metrics"
)

// Store is the membership-check capability the gate is constructed with.
// Production wires the Redis store; tests wire a fixed mapping.
type Store interface {
	Contains(ctx context.Context, subject string) (bool, error)
}

// Gate answers "may this subdomain be served?". It invokes the store at most
// once per check and applies the configured FailMode when the store is
// unreachable.
type Gate struct {
	store    Store
	policy   Policy
	failMode FailMode
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) { g.metrics = m }
}

// WithTimeout bounds each store lookup. Zero leaves the caller's deadline in
// charge.
func WithTimeout(d time.Duration) Option {
	return func(g *Gate) { g.timeout = d }
}

// New constructs a gate. The store is required even under PolicyDisabled so
// a misconfigured deployment fails at startup, not at enforcement time.
func New(store Store, policy Policy, failMode FailMode, opts ...Option) (*Gate, error) {
	if store == nil {
		return nil, fmt.Errorf("blocklist store is required")
	}
	g := &Gate{
		store:    store,
		policy:   policy,
		failMode: failMode,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Check evaluates one subdomain. The returned Decision is always usable:
// when the store lookup fails, Blocked reflects the configured FailMode and
// the error is returned alongside so the caller can emit its error event.
func (g *Gate) Check(ctx context.Context, subdomain string) (Decision, error) {
	subject := strings.ToLower(subdomain)
	decision := Decision{Subject: subject, CheckedAt: time.Now()}

	if g.policy == PolicyDisabled {
		g.metrics.IncrementChecks("skipped")
		return decision, nil
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	blocked, err := g.store.Contains(ctx, subject)
	if err != nil {
		decision.Blocked = g.failMode == FailClosed
		g.metrics.IncrementChecks("error")
		g.logger.Error("blocklist lookup failed",
			"subject", subject,
			"fail_mode", string(g.failMode),
			"error", err,
		)
		return decision, fmt.Errorf("blocklist lookup for %q: %w", subject, err)
	}

	decision.Blocked = blocked
	if blocked {
		g.metrics.IncrementChecks("blocked")
	} else {
		g.metrics.IncrementChecks("allowed")
	}
	return decision, nil
}
