// Package middleware provides the HTTP middleware chain: bearer-token
// authentication with a pre-resolved capability set, role and capability
// gates, and Redis-backed rate limiting.
package middleware
