// Package tokenstore persists issued refresh tokens keyed by the token
// value itself. Two implementations: a process-local map (sessions are
// lost on restart, fine for single-instance deployments) and a Redis
// backed store with native TTL eviction.
package tokenstore

import (
	"context"
	"time"
)

type Store interface {
	// Save the token with the account email it belongs to. The store
	// owns TTL enforcement, callers never poll for expiry.
	Save(ctx context.Context, token string, email string, ttl time.Duration) error

	// Get email by token value
	// Must return apperrors.ErrRefreshTokenNotFound on miss or after TTL
	Get(ctx context.Context, token string) (string, error)

	// Delete the token. Deleting an absent token is not an error
	Delete(ctx context.Context, token string) error
}
