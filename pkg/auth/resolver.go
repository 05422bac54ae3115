package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrInvalidToken is returned when a token matches no active user
var ErrInvalidToken = errors.New("invalid or inactive API token")

const (
	defaultCacheSize = 4096
	defaultCacheTTL  = time.Minute
)

type cachedContext struct {
	authCtx  *AuthContext
	cachedAt time.Time
}

// Resolver resolves bearer tokens to an AuthContext with a single user lookup,
// memoized in a small LRU so repeated calls from the same client within the
// TTL skip the database entirely.
type Resolver struct {
	db    *sql.DB
	cache *lru.Cache[string, cachedContext]
	ttl   time.Duration
}

// NewResolver creates a token resolver backed by the users table
func NewResolver(db *sql.DB) (*Resolver, error) {
	cache, err := lru.New[string, cachedContext](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth cache: %w", err)
	}
	return &Resolver{
		db:    db,
		cache: cache,
		ttl:   defaultCacheTTL,
	}, nil
}

// Resolve looks up the user owning the token and returns its capability set.
// Returns ErrInvalidToken when no active user matches.
func (r *Resolver) Resolve(ctx context.Context, token string) (*AuthContext, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	if entry, ok := r.cache.Get(token); ok {
		if time.Since(entry.cachedAt) < r.ttl {
			return entry.authCtx, nil
		}
		r.cache.Remove(token)
	}

	query := `
		SELECT id, username, role
		FROM users
		WHERE api_token = $1 AND is_active = TRUE
	`

	var (
		userID   int64
		username string
		roleStr  string
	)
	err := r.db.QueryRowContext(ctx, query, token).Scan(&userID, &username, &roleStr)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}

	role, ok := ParseRole(roleStr)
	if !ok {
		// Unknown role in storage grants nothing
		role = RoleStudent
	}

	authCtx := NewAuthContext(userID, username, role)
	r.cache.Add(token, cachedContext{authCtx: authCtx, cachedAt: time.Now()})
	return authCtx, nil
}

// Invalidate drops a token from the cache (e.g. after a role change)
func (r *Resolver) Invalidate(token string) {
	r.cache.Remove(token)
}
