// Package httptransport is the thin HTTP layer in front of the classifier.
// It stays free of business logic: classification happens in middleware and
// admitted requests are handed to the content resolver.
package httptransport

import (
	"context"
	"encoding/json"
	"net/http"

	"sitegate/internal/classifier"
	classifymw "sitegate/internal/classifier/middleware"
)

// Resolver serves an admitted, classified request. The production resolver
// fetches site content from the decentralized store; that lives outside
// this service, behind this port.
type Resolver interface {
	Resolve(w http.ResponseWriter, r *http.Request, result classifier.Result)
}

// HealthChecker reports the health of a backing dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler wires transport endpoints to their collaborators.
type Handler struct {
	resolver Resolver
	checks   map[string]HealthChecker
}

// NewHandler constructs the transport handler. checks maps dependency names
// to their health probes for /healthz reporting.
func NewHandler(resolver Resolver, checks map[string]HealthChecker) *Handler {
	return &Handler{resolver: resolver, checks: checks}
}

// HandleSite forwards the classified request to the resolver.
func (h *Handler) HandleSite(w http.ResponseWriter, r *http.Request) {
	result, ok := classifymw.FromContext(r.Context())
	if !ok {
		// Classification middleware is mounted in front of this handler;
		// reaching here without a result is a wiring bug.
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	h.resolver.Resolve(w, r, result)
}

// HandleHealthz reports liveness plus per-dependency health.
func (h *Handler) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	deps := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Health(r.Context()); err != nil {
			deps[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":       http.StatusText(status),
		"dependencies": deps,
	})
}

// StubResolver echoes the classification as JSON. Stands in for the
// content-fetch pipeline in tests and local development.
type StubResolver struct{}

// Resolve writes the classification outcome.
func (StubResolver) Resolve(w http.ResponseWriter, r *http.Request, result classifier.Result) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"subdomain": result.Parsed.Subdomain,
		"path":      result.Parsed.Path,
		"admitted":  result.Admit,
	})
}
