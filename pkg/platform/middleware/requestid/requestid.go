// Package requestid assigns each request a correlation ID, reusing the
// upstream proxy's ID when one is forwarded.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"sitegate/pkg/requestcontext"
)

// Header is the correlation ID header, set on responses as well so clients
// can reference failed requests.
const Header = "X-Request-Id"

// Middleware injects a request ID into the context and response.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(Header)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(Header, id)
		ctx := requestcontext.WithRequestID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
