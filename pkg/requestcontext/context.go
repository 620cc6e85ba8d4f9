// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values. Middleware sets them, services read them, and
// neither side needs net/http for it.
package requestcontext

import "context"

type requestIDKey struct{}

// ContextKeyRequestID is exported for tests that need context.WithValue
// directly.
var ContextKeyRequestID = requestIDKey{}

// RequestID retrieves the correlation id, or "" if not set.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// WithRequestID injects a correlation id into the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, id)
}
