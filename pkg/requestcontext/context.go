// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are set by transport middleware and consumed by the classifier and
// sinks. Keeping this package free of net/http lets services import only
// what they need.
//
// Usage in services (read values):
//
//	requestID := requestcontext.RequestID(ctx)
//	originalURL := requestcontext.OriginalURL(ctx)
//
// Usage in middleware (set values):
//
//	ctx = requestcontext.WithRequestID(ctx, requestID)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithClientMetadata(ctx, "203.0.113.9", "Mozilla/5.0")
package requestcontext

import (
	"context"
)

// Context key types (unexported for encapsulation).
type (
	requestIDKey   struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	originalURLKey struct{}
)

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	ctx = context.WithValue(ctx, userAgentKey{}, userAgent)
	return ctx
}

// OriginalURL retrieves the analytics-attribution URL forwarded by the edge
// proxy, when present.
func OriginalURL(ctx context.Context) string {
	if u, ok := ctx.Value(originalURLKey{}).(string); ok {
		return u
	}
	return ""
}

// WithOriginalURL injects the original URL into the context.
func WithOriginalURL(ctx context.Context, url string) context.Context {
	return context.WithValue(ctx, originalURLKey{}, url)
}
