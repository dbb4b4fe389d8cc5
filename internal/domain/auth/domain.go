package auth

import (
	"time"
)

// RefreshToken is the stored record of an issued refresh token. Only the
// hash of the token is kept.
type RefreshToken struct {
	Username  string
	TokenHash string
	IssuedAt  time.Time
	ExpiresAt time.Time
}
