package auth

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashToken is the storage key of a refresh token. Raw tokens are never
// persisted.
func HashToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return base64.RawURLEncoding.EncodeToString(h[:])
}
