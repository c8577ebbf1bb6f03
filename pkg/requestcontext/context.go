// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Values are typically set by middleware and consumed by services. Keeping
// this package free of net/http dependencies means services can import only
// what they need without pulling in HTTP-related code.
//
// Usage in services (read values):
//
//	now := requestcontext.Now(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"
)

// Context key types (unexported for encapsulation).
type (
	requestIDKey   struct{}
	requestTimeKey struct{}
	issuerKey      struct{}
)

// Exported context keys for tests that need context.WithValue directly.
var (
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyIssuer      = issuerKey{}
)

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context. The registry treats
// this as its ledger clock: every record issued within one request observes
// the same instant. Falls back to time.Now() for non-HTTP contexts such as
// workers, CLI commands, and tests that don't set a time.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests that don't run the full HTTP middleware chain.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// Issuer retrieves the authenticated issuer identity, when the optional
// issuer-token middleware is enabled. Empty string means no identity was
// established for the request.
func Issuer(ctx context.Context) string {
	if issuer, ok := ctx.Value(ContextKeyIssuer).(string); ok {
		return issuer
	}
	return ""
}

// WithIssuer injects an issuer identity into the context.
func WithIssuer(ctx context.Context, issuer string) context.Context {
	return context.WithValue(ctx, ContextKeyIssuer, issuer)
}
