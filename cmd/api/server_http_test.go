package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NordCoder/loanbook/internal/auth"
	config "github.com/NordCoder/loanbook/internal/config/api"
	pg "github.com/NordCoder/loanbook/internal/repository/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	codec := auth.NewCodec(auth.CodecConfig{
		AccessSecret:  []byte("access"),
		RefreshSecret: []byte("refresh"),
	})
	return buildRouter(cfg, zap.NewNop(), deps{
		db: &pg.DB{},
		tokens: &tokenBackend{
			store:  pg.NewRefreshTokenRepo(&pg.DB{}),
			health: func(context.Context) error { return nil },
			close:  func() error { return nil },
		},
		codec:  codec,
		hasher: auth.NewPasswordHasher(4),
	})
}

func TestRouter(t *testing.T) {
	h := testRouter(t)

	t.Run("loans require a bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/loans/loan-records", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Access token required"}`, rec.Body.String())
	})

	t.Run("unknown route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/nope", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.JSONEq(t, `{"error":"Not Found"}`, rec.Body.String())
	})

	t.Run("wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/login", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("metrics", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "go_goroutines")
	})
}
