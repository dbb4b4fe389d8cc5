package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NordCoder/loanbook/internal/auth"
	domainauth "github.com/NordCoder/loanbook/internal/domain/auth"
	"github.com/NordCoder/loanbook/internal/domain/user"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrDuplicateIdentity  = errors.New("username already taken")
	ErrMissingToken       = errors.New("token required")
	ErrTokenRevoked       = errors.New("refresh token revoked")
	ErrLogoutFailed       = errors.New("logout failed")
)

type Credentials interface {
	// FindByUsername returns nil, nil when there is no such user.
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	Create(ctx context.Context, username, password string) (*user.User, error)
	CheckPassword(u *user.User, password string) error
}

type Config struct {
	// UnifyLoginErrors reports unknown users and wrong passwords alike.
	UnifyLoginErrors bool
	Now              func() time.Time
}

// Session is the result of a successful login or signup.
type Session struct {
	Username     string
	AccessToken  string
	RefreshToken string
}

type Usecase struct {
	creds  Credentials
	tokens domainauth.TokenStore
	codec  *auth.Codec
	cfg    Config
}

func NewUseCase(creds Credentials, tokens domainauth.TokenStore, codec *auth.Codec, cfg Config) *Usecase {
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{creds: creds, tokens: tokens, codec: codec, cfg: cfg}
}

func (u *Usecase) Login(ctx context.Context, username, password string) (*Session, error) {
	rec, err := u.creds.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, u.loginErr(ErrUserNotFound)
	}
	if err := u.creds.CheckPassword(rec, password); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, u.loginErr(ErrInvalidPassword)
		}
		return nil, err
	}
	return u.issueSession(ctx, rec.Username)
}

// Signup skips the confirmation check when confirm is nil.
func (u *Usecase) Signup(ctx context.Context, username, password string, confirm *string) (*Session, error) {
	if confirm != nil && *confirm != password {
		return nil, ErrPasswordMismatch
	}
	existing, err := u.creds.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateIdentity
	}
	created, err := u.creds.Create(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return u.issueSession(ctx, created.Username)
}

// Refresh returns a new access token. The refresh token itself is not
// rotated; it stays valid until logout or expiry.
func (u *Usecase) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", ErrMissingToken
	}
	ok, err := u.tokens.Exists(ctx, auth.HashToken(refreshToken))
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrTokenRevoked
	}
	identity, err := u.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return "", err
	}
	access, _, err := u.codec.IssueAccess(identity)
	if err != nil {
		return "", fmt.Errorf("sign access: %w", err)
	}
	return access, nil
}

func (u *Usecase) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return ErrLogoutFailed
	}
	removed, err := u.tokens.Delete(ctx, auth.HashToken(refreshToken))
	if err != nil {
		return err
	}
	if !removed {
		return ErrLogoutFailed
	}
	return nil
}

func (u *Usecase) issueSession(ctx context.Context, username string) (*Session, error) {
	access, _, err := u.codec.IssueAccess(username)
	if err != nil {
		return nil, fmt.Errorf("sign access: %w", err)
	}
	refresh, exp, err := u.codec.IssueRefresh(username)
	if err != nil {
		return nil, fmt.Errorf("sign refresh: %w", err)
	}
	rec := &domainauth.RefreshToken{
		Username:  username,
		TokenHash: auth.HashToken(refresh),
		IssuedAt:  u.cfg.Now(),
		ExpiresAt: exp,
	}
	if err := u.tokens.Save(ctx, rec); err != nil {
		return nil, fmt.Errorf("save refresh: %w", err)
	}
	return &Session{Username: username, AccessToken: access, RefreshToken: refresh}, nil
}

func (u *Usecase) loginErr(err error) error {
	if u.cfg.UnifyLoginErrors {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	return err
}
