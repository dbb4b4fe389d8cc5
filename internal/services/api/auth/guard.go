package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/NordCoder/loanbook/internal/auth"
	"github.com/NordCoder/loanbook/internal/services/api/httpio"
)

type ctxKey int

const identityKey ctxKey = 1

func WithIdentity(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, identityKey, username)
}

func IdentityFromCtx(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(identityKey).(string)
	return name, ok && name != ""
}

type AccessVerifier interface {
	VerifyAccess(token string) (string, error)
}

// Guard admits requests carrying a valid access token and stores the
// token's username in the request context. It never touches storage.
func Guard(v AccessVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearer(r)
			if token == "" {
				httpio.WriteError(w, http.StatusUnauthorized, "Access token required")
				return
			}
			name, err := v.VerifyAccess(token)
			if err != nil {
				if errors.Is(err, auth.ErrExpired) {
					httpio.WriteError(w, http.StatusUnauthorized, "Token expired")
					return
				}
				httpio.WriteError(w, http.StatusUnauthorized, "Invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), name)))
		})
	}
}

func bearer(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return ""
}
