package auth

import (
	"context"
	"time"
)

// TokenStore is the authority on refresh-token liveness: a token that is not
// present is revoked regardless of its signature.
type TokenStore interface {
	Save(ctx context.Context, t *RefreshToken) error
	Exists(ctx context.Context, tokenHash string) (bool, error)
	// Delete reports whether a record was removed.
	Delete(ctx context.Context, tokenHash string) (bool, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
