package postgres

import (
	"context"
	"time"

	"github.com/NordCoder/loanbook/internal/domain/auth"
)

var _ auth.TokenStore = (*RefreshTokenRepo)(nil)

type RefreshTokenRepo struct{ db *DB }

func NewRefreshTokenRepo(db *DB) *RefreshTokenRepo { return &RefreshTokenRepo{db: db} }

const (
	qRTCreate = `
INSERT INTO refresh_tokens (token_hash, username, issued_at, expires_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (token_hash) DO NOTHING;`

	qRTExists = `SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token_hash = $1);`

	qRTDelete = `DELETE FROM refresh_tokens WHERE token_hash = $1;`

	qRTPurge = `DELETE FROM refresh_tokens WHERE expires_at <= $1;`
)

func (r *RefreshTokenRepo) Save(ctx context.Context, t *auth.RefreshToken) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.execQueryer(ctx).Exec(ctx, qRTCreate, t.TokenHash, t.Username, t.IssuedAt, t.ExpiresAt); err != nil {
		return storeErr("save refresh", err)
	}
	return nil
}

func (r *RefreshTokenRepo) Exists(ctx context.Context, tokenHash string) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var ok bool
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qRTExists, tokenHash).Scan(&ok); err != nil {
		return false, storeErr("refresh exists", err)
	}
	return ok, nil
}

func (r *RefreshTokenRepo) Delete(ctx context.Context, tokenHash string) (bool, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qRTDelete, tokenHash)
	if err != nil {
		return false, storeErr("delete refresh", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *RefreshTokenRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.execQueryer(ctx).Exec(ctx, qRTPurge, now)
	if err != nil {
		return 0, storeErr("purge refresh", err)
	}
	return tag.RowsAffected(), nil
}
