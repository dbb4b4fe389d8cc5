package user

import (
	"errors"
	"time"
)

var ErrDuplicateUsername = errors.New("username already taken")

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
