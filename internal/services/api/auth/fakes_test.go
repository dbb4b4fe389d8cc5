package auth

import (
	"context"
	"sync"
	"time"

	"github.com/NordCoder/loanbook/internal/auth"
	"github.com/NordCoder/loanbook/internal/domain"
	domainauth "github.com/NordCoder/loanbook/internal/domain/auth"
	"github.com/NordCoder/loanbook/internal/domain/user"
)

type memUsers struct {
	mu     sync.Mutex
	byName map[string]*user.User
	nextID int64
	err    error
}

func newMemUsers() *memUsers { return &memUsers{byName: map[string]*user.User{}} }

func (m *memUsers) Create(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byName[u.Username]; ok {
		return user.ErrDuplicateUsername
	}
	m.nextID++
	u.ID = m.nextID
	u.CreatedAt = time.Now()
	cp := *u
	m.byName[u.Username] = &cp
	return nil
}

func (m *memUsers) GetByUsername(_ context.Context, username string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.byName[username]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

type memTokens struct {
	mu     sync.Mutex
	tokens map[string]domainauth.RefreshToken
	err    error
}

var _ domainauth.TokenStore = (*memTokens)(nil)

func newMemTokens() *memTokens { return &memTokens{tokens: map[string]domainauth.RefreshToken{}} }

func (m *memTokens) Save(_ context.Context, t *domainauth.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.tokens[t.TokenHash] = *t
	return nil
}

func (m *memTokens) Exists(_ context.Context, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.tokens[hash]
	return ok, nil
}

func (m *memTokens) Delete(_ context.Context, hash string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.tokens[hash]
	delete(m.tokens, hash)
	return ok, nil
}

func (m *memTokens) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for k, t := range m.tokens {
		if !t.ExpiresAt.After(now) {
			delete(m.tokens, k)
			n++
		}
	}
	return n, nil
}

func (m *memTokens) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tokens)
}

var errStoreDown = domain.ErrStoreUnavailable

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testDeps struct {
	users  *memUsers
	tokens *memTokens
	codec  *auth.Codec
	clock  *fakeClock
	uc     *Usecase
}

func newTestDeps(cfg Config) *testDeps {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)}
	users := newMemUsers()
	tokens := newMemTokens()
	codec := auth.NewCodec(auth.CodecConfig{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
		Now:           clock.Now,
	})
	cfg.Now = clock.Now
	creds := NewCredentialStore(users, auth.NewPasswordHasher(4))
	return &testDeps{
		users:  users,
		tokens: tokens,
		codec:  codec,
		clock:  clock,
		uc:     NewUseCase(creds, tokens, codec, cfg),
	}
}
