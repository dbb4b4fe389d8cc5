package main

import (
	"context"

	config "github.com/NordCoder/loanbook/internal/config/api"
	domainauth "github.com/NordCoder/loanbook/internal/domain/auth"
	pg "github.com/NordCoder/loanbook/internal/repository/postgres"
	rds "github.com/NordCoder/loanbook/internal/repository/redis"
	"go.uber.org/zap"
)

type tokenBackend struct {
	store  domainauth.TokenStore
	health func(context.Context) error
	close  func() error
}

// initTokenStore picks the refresh-token backend named by auth.token_store.
// Postgres is the default and shares the main pool.
func initTokenStore(ctx context.Context, cfg *config.Config, db *pg.DB, logger *zap.Logger) (*tokenBackend, error) {
	if cfg.Auth.TokenStore != config.TokenStoreRedis {
		logger.Info("refresh tokens in postgres")
		return &tokenBackend{
			store:  pg.NewRefreshTokenRepo(db),
			health: func(context.Context) error { return nil },
			close:  func() error { return nil },
		}, nil
	}

	client, err := rds.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	logger.Info("refresh tokens in redis", zap.String("addr", cfg.Redis.Addr))
	return &tokenBackend{
		store:  rds.NewRefreshTokenStore(client, cfg.Redis.KeyPrefix),
		health: func(ctx context.Context) error { return client.Ping(ctx).Err() },
		close:  client.Close,
	}, nil
}
