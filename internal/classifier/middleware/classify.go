// Package middleware runs the classifier in front of the content resolver
// and turns deny decisions into HTTP responses.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"sitegate/internal/classifier"
	"sitegate/pkg/requestcontext"
)

type resultKey struct{}

// FromContext retrieves the classification stored by Classify. The second
// return is false when the middleware did not run.
func FromContext(ctx context.Context) (classifier.Result, bool) {
	result, ok := ctx.Value(resultKey{}).(classifier.Result)
	return result, ok
}

// Middleware classifies every request before the resolver sees it.
type Middleware struct {
	service *classifier.Service
	logger  *slog.Logger
}

// New constructs the classification middleware.
func New(service *classifier.Service, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{service: service, logger: logger}
}

// Classify runs the pipeline and either denies with 451 or passes the
// result to the next handler. Classification runs on a context detached
// from the client's cancellation: it is cheap and side-effect-only, and
// tearing it down mid-flight would orphan partial log/analytics state.
func (m *Middleware) Classify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		result := m.service.Classify(context.WithoutCancel(ctx), classifier.Request{
			Host:        r.Host,
			Path:        r.URL.Path,
			OriginalURL: requestcontext.OriginalURL(ctx),
			UserAgent:   requestcontext.UserAgent(ctx),
			ClientIP:    requestcontext.ClientIP(ctx),
			RequestID:   requestcontext.RequestID(ctx),
		})

		if !result.Admit {
			writeDenied(w, result)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, resultKey{}, result)))
	})
}

func writeDenied(w http.ResponseWriter, result classifier.Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnavailableForLegalReasons)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":     "site_blocked",
		"subdomain": result.Parsed.Subdomain,
	})
}
