// Package contextkeys defines shared context keys used across packages to
// avoid import cycles between middleware and domain packages.
package contextkeys

import "context"

// Key is the type used for all context keys in this module
type Key string

const (
	// AuthKey is the context key for the resolved authorization context
	AuthKey Key = "auth_context"
	// RequestIDKey is the context key for the request ID
	RequestIDKey Key = "request_id"
)

// WithAuth stores an authorization context value
func WithAuth(ctx context.Context, authCtx interface{}) context.Context {
	return context.WithValue(ctx, AuthKey, authCtx)
}

// Auth retrieves the raw authorization context value, or nil
func Auth(ctx context.Context) interface{} {
	return ctx.Value(AuthKey)
}
