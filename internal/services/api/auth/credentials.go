package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/NordCoder/loanbook/internal/auth"
	"github.com/NordCoder/loanbook/internal/domain/user"
)

// CredentialStore pairs the user repository with password hashing so that
// plaintext passwords never reach storage.
type CredentialStore struct {
	users  user.Repo
	hasher *auth.PasswordHasher
}

func NewCredentialStore(users user.Repo, hasher *auth.PasswordHasher) *CredentialStore {
	return &CredentialStore{users: users, hasher: hasher}
}

func (s *CredentialStore) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *CredentialStore) Create(ctx context.Context, username, password string) (*user.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &user.User{Username: username, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrDuplicateUsername) {
			return nil, ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *CredentialStore) CheckPassword(u *user.User, password string) error {
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return ErrInvalidPassword
		}
		return err
	}
	return nil
}
