package middleware

import (
	"net/http"
	"strings"

	"github.com/manabihub/insights/pkg/auth"
	"github.com/manabihub/insights/pkg/contextkeys"
	"github.com/manabihub/insights/pkg/httputil"
	"github.com/manabihub/insights/pkg/observability"
)

// AuthMiddleware resolves the bearer token to an AuthContext once per request
type AuthMiddleware struct {
	resolver *auth.Resolver
	logger   *observability.Logger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(resolver *auth.Resolver, logger *observability.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
		logger:   logger,
	}
}

// Handler wraps an HTTP handler with authentication. The capability set is
// resolved here, once, and attached to the request context.
func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.WriteUnauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.WriteUnauthorized(w, "invalid authorization header format")
			return
		}

		authCtx, err := m.resolver.Resolve(r.Context(), parts[1])
		if err == auth.ErrInvalidToken {
			httputil.WriteUnauthorized(w, "invalid or expired token")
			return
		}
		if err != nil {
			m.logger.WithError(err).Error("token resolution failed")
			httputil.WriteInternalError(w, err)
			return
		}

		ctx := contextkeys.WithAuth(r.Context(), authCtx)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetAuthContext extracts the resolved auth context from a request
func GetAuthContext(r *http.Request) *auth.AuthContext {
	value := contextkeys.Auth(r.Context())
	if value == nil {
		return nil
	}
	authCtx, ok := value.(*auth.AuthContext)
	if !ok {
		return nil
	}
	return authCtx
}

// RequireRole creates middleware that checks for a specific role
func RequireRole(role auth.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthContext(r)
			if authCtx == nil {
				httputil.WriteForbidden(w, "authentication required")
				return
			}
			if !authCtx.HasRole(role) {
				httputil.WriteForbidden(w, "insufficient role permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireCapability creates middleware that checks the pre-resolved
// capability set
func RequireCapability(cap auth.Capability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := GetAuthContext(r)
			if authCtx == nil {
				httputil.WriteForbidden(w, "authentication required")
				return
			}
			if !authCtx.HasCapability(cap) {
				httputil.WriteForbidden(w, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
