package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard(t *testing.T) {
	d := newTestDeps(Config{})
	token, _, err := d.codec.IssueAccess("alice123")
	require.NoError(t, err)

	var seen string
	h := Guard(d.codec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromCtx(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/loans/loan-records", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	tests := []struct {
		name       string
		header     string
		advance    time.Duration
		wantStatus int
		wantBody   string
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantBody: "Access token required"},
		{name: "not bearer", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantBody: "Access token required"},
		{name: "garbage token", header: "Bearer garbage", wantStatus: http.StatusUnauthorized, wantBody: "Invalid token"},
		{name: "valid", header: "Bearer " + token, wantStatus: http.StatusNoContent},
		{name: "lowercase scheme", header: "bearer " + token, wantStatus: http.StatusNoContent},
		{name: "just before expiry", header: "Bearer " + token, advance: 15*time.Minute - time.Second, wantStatus: http.StatusNoContent},
		{name: "at expiry", header: "Bearer " + token, advance: time.Second, wantStatus: http.StatusUnauthorized, wantBody: "Token expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			d.clock.Advance(tt.advance)
			rec := do(tt.header)
			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
				assert.Empty(t, seen)
				return
			}
			assert.Equal(t, "alice123", seen)
		})
	}
}

func TestGuard_RefreshTokenIsNotAnAccessToken(t *testing.T) {
	d := newTestDeps(Config{})
	refresh, _, err := d.codec.IssueRefresh("alice123")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	rec := httptest.NewRecorder()
	Guard(d.codec)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 0, d.tokens.len())
}
