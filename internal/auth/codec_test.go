package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newTestCodec(clock *fakeClock) *Codec {
	return NewCodec(CodecConfig{
		AccessSecret:  []byte("access-secret"),
		RefreshSecret: []byte("refresh-secret"),
		Now:           clock.Now,
	})
}

func TestCodec_AccessRoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCodec(clock)

	tok, exp, err := c.IssueAccess("alice123")
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	assert.Equal(t, clock.t.Add(15*time.Minute), exp)

	id, err := c.VerifyAccess(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice123", id)
}

func TestCodec_RefreshLifetime(t *testing.T) {
	clock := &fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
	c := newTestCodec(clock)

	tok, exp, err := c.IssueRefresh("bob")
	require.NoError(t, err)
	assert.Equal(t, clock.t.Add(7*24*time.Hour), exp)

	clock.t = exp.Add(-time.Second)
	id, err := c.VerifyRefresh(tok)
	require.NoError(t, err)
	assert.Equal(t, "bob", id)

	clock.t = exp
	_, err = c.VerifyRefresh(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestCodec_AccessExpiryBoundary(t *testing.T) {
	issued := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: issued}
	c := newTestCodec(clock)

	tok, _, err := c.IssueAccess("alice123")
	require.NoError(t, err)

	clock.t = issued.Add(15*time.Minute - time.Second)
	_, err = c.VerifyAccess(tok)
	require.NoError(t, err)

	clock.t = issued.Add(15 * time.Minute)
	_, err = c.VerifyAccess(tok)
	assert.ErrorIs(t, err, ErrExpired)

	clock.t = issued.Add(time.Hour)
	_, err = c.VerifyAccess(tok)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestCodec_SecretsAreNotInterchangeable(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	c := newTestCodec(clock)

	access, _, err := c.IssueAccess("alice123")
	require.NoError(t, err)
	refresh, _, err := c.IssueRefresh("alice123")
	require.NoError(t, err)

	_, err = c.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = c.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_WrongSecret(t *testing.T) {
	clock := &fakeClock{t: time.Now().UTC()}
	c := newTestCodec(clock)

	tok, _, err := c.IssueAccess("alice123")
	require.NoError(t, err)

	_, err = c.Verify(tok, []byte("other"))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_Malformed(t *testing.T) {
	c := newTestCodec(&fakeClock{t: time.Now().UTC()})

	for _, tok := range []string{"", "not.a.jwt", "abc", strings.Repeat("x", 64)} {
		_, err := c.VerifyAccess(tok)
		assert.ErrorIs(t, err, ErrInvalidSignature, "token %q", tok)
	}
}

func TestCodec_TamperedPayload(t *testing.T) {
	c := newTestCodec(&fakeClock{t: time.Now().UTC()})

	tok, _, err := c.IssueAccess("alice123")
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	other, _, err := c.IssueAccess("mallory")
	require.NoError(t, err)
	forged := parts[0] + "." + strings.Split(other, ".")[1] + "." + parts[2]

	_, err = c.VerifyAccess(forged)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestCodec_TokensAreUnique(t *testing.T) {
	c := newTestCodec(&fakeClock{t: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)})

	a, _, err := c.IssueRefresh("alice123")
	require.NoError(t, err)
	b, _, err := c.IssueRefresh("alice123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, HashToken(a), HashToken(b))
}

func TestCodec_EmptySecret(t *testing.T) {
	c := NewCodec(CodecConfig{AccessSecret: nil, RefreshSecret: []byte("r")})
	_, _, err := c.IssueAccess("alice123")
	assert.Error(t, err)
}
