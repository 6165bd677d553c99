package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	classifymw "sitegate/internal/classifier/middleware"
	"sitegate/pkg/platform/middleware/metadata"
	"sitegate/pkg/platform/middleware/requestid"
)

// NewRouter wires the public surface. Operational endpoints bypass
// classification; everything else is classified before it can reach the
// resolver.
func NewRouter(h *Handler, classify *classifymw.Middleware) http.Handler {
	r := chi.NewRouter()

	r.Use(requestid.Middleware)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", h.HandleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(classify.Classify)
		r.Handle("/*", http.HandlerFunc(h.HandleSite))
	})

	return r
}
