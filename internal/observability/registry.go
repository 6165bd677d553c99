package observability

import (
	"context"
	"log/slog"
)

// Backend receives events for the severities it was registered under.
// Implementations translate the event into their own system's model and
// must tolerate being called from the request hot path.
type Backend interface {
	Deliver(ctx context.Context, event Event) error
}

// Registry fans events out to registered backends. Registration happens
// during process startup, before traffic is accepted; Emit is read-only and
// needs no locking afterwards.
type Registry struct {
	backends map[Severity][]Backend
	fallback *slog.Logger
}

type RegistryOption func(*Registry)

// WithFallbackLogger sets the logger of last resort for backend faults.
func WithFallbackLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) { r.fallback = logger }
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		backends: make(map[Severity][]Backend),
		fallback: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register appends a backend for one severity. Delivery order is
// registration order.
func (r *Registry) Register(severity Severity, backend Backend) {
	if backend == nil {
		return
	}
	r.backends[severity] = append(r.backends[severity], backend)
}

// RegisterAll appends a backend for every severity.
func (r *Registry) RegisterAll(backend Backend) {
	for _, sev := range []Severity{SeverityDebug, SeverityInfo, SeverityWarn, SeverityError} {
		r.Register(sev, backend)
	}
}

// Emit delivers the event to every backend registered for its severity.
// One backend's error or panic never prevents delivery to the others and
// never propagates to the caller.
func (r *Registry) Emit(ctx context.Context, event Event) {
	for _, backend := range r.backends[event.Severity] {
		r.deliver(ctx, backend, event)
	}
}

func (r *Registry) deliver(ctx context.Context, backend Backend, event Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.fallback.Error("observability backend panicked",
				"severity", event.Severity.String(),
				"panic", rec,
			)
		}
	}()
	if err := backend.Deliver(ctx, event); err != nil {
		r.fallback.Error("observability backend failed",
			"severity", event.Severity.String(),
			"error", err,
		)
	}
}

// Debug emits a debug-severity event.
func (r *Registry) Debug(ctx context.Context, message string, attrs map[string]any) {
	r.Emit(ctx, NewEvent(SeverityDebug, message, attrs))
}

// Info emits an info-severity event.
func (r *Registry) Info(ctx context.Context, message string, attrs map[string]any) {
	r.Emit(ctx, NewEvent(SeverityInfo, message, attrs))
}

// Warn emits a warn-severity event.
func (r *Registry) Warn(ctx context.Context, message string, attrs map[string]any) {
	r.Emit(ctx, NewEvent(SeverityWarn, message, attrs))
}

// Error emits an error-severity event.
func (r *Registry) Error(ctx context.Context, message string, attrs map[string]any) {
	r.Emit(ctx, NewEvent(SeverityError, message, attrs))
}
