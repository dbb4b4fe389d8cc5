package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/NordCoder/loanbook/internal/domain"
	"github.com/NordCoder/loanbook/internal/domain/auth"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "loanbook:rt:"

var _ auth.TokenStore = (*RefreshTokenStore)(nil)

// RefreshTokenStore keeps one key per refresh-token hash. Keys expire with
// the token, so PurgeExpired has nothing to do.
type RefreshTokenStore struct {
	c      redis.Cmdable
	prefix string
	now    func() time.Time
}

func NewRefreshTokenStore(c redis.Cmdable, prefix string) *RefreshTokenStore {
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RefreshTokenStore{c: c, prefix: prefix, now: time.Now}
}

func (s *RefreshTokenStore) key(hash string) string { return s.prefix + hash }

func (s *RefreshTokenStore) Save(ctx context.Context, t *auth.RefreshToken) error {
	ttl := t.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return nil
	}
	if err := s.c.Set(ctx, s.key(t.TokenHash), t.Username, ttl).Err(); err != nil {
		return storeErr("save refresh", err)
	}
	return nil
}

func (s *RefreshTokenStore) Exists(ctx context.Context, tokenHash string) (bool, error) {
	n, err := s.c.Exists(ctx, s.key(tokenHash)).Result()
	if err != nil {
		return false, storeErr("refresh exists", err)
	}
	return n > 0, nil
}

func (s *RefreshTokenStore) Delete(ctx context.Context, tokenHash string) (bool, error) {
	n, err := s.c.Del(ctx, s.key(tokenHash)).Result()
	if err != nil {
		return false, storeErr("delete refresh", err)
	}
	return n > 0, nil
}

func (s *RefreshTokenStore) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
