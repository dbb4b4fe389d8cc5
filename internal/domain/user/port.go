package user

import "context"

type Repo interface {
	// Create fails with ErrDuplicateUsername when the username is taken.
	Create(ctx context.Context, u *User) error
	// GetByUsername returns nil, nil when there is no such user.
	GetByUsername(ctx context.Context, username string) (*User, error)
}
