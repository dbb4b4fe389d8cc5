//go:build integration

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NordCoder/loanbook/internal/domain/auth"
	"github.com/NordCoder/loanbook/internal/domain/loan"
	"github.com/NordCoder/loanbook/internal/domain/outbox"
	"github.com/NordCoder/loanbook/internal/domain/user"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(loan.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestRepositories(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		repo := NewUserRepo(env.DB)

		u := &user.User{Username: "alice", PasswordHash: "hash"}
		require.NoError(t, repo.Create(ctx, u))
		assert.NotZero(t, u.ID)
		assert.False(t, u.CreatedAt.IsZero())

		err := repo.Create(ctx, &user.User{Username: "alice", PasswordHash: "other"})
		require.ErrorIs(t, err, user.ErrDuplicateUsername)

		got, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "hash", got.PasswordHash)

		missing, err := repo.GetByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("refresh tokens", func(t *testing.T) {
		env.createUser(t, "bob")
		store := NewRefreshTokenRepo(env.DB)
		now := time.Now().UTC().Truncate(time.Second)

		live := &auth.RefreshToken{Username: "bob", TokenHash: "live", IssuedAt: now, ExpiresAt: now.Add(time.Hour)}
		dead := &auth.RefreshToken{Username: "bob", TokenHash: "dead", IssuedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
		require.NoError(t, store.Save(ctx, live))
		require.NoError(t, store.Save(ctx, dead))
		require.NoError(t, store.Save(ctx, live))

		ok, err := store.Exists(ctx, "live")
		require.NoError(t, err)
		assert.True(t, ok)

		n, err := store.PurgeExpired(ctx, now)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		ok, err = store.Exists(ctx, "dead")
		require.NoError(t, err)
		assert.False(t, ok)

		removed, err := store.Delete(ctx, "live")
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = store.Delete(ctx, "live")
		require.NoError(t, err)
		assert.False(t, removed)
	})

	t.Run("loans", func(t *testing.T) {
		env.createUser(t, "carol")
		env.createUser(t, "dave")
		repo := NewLoanRepo(env.DB)

		first := &loan.Loan{Username: "carol", BookTitle: "Dune", BookAuthor: "Herbert", LoanDate: day("2024-01-01"), DueDate: day("2024-01-15")}
		second := &loan.Loan{Username: "carol", BookTitle: "Emma", BookAuthor: "Austen", LoanDate: day("2024-02-01"), DueDate: day("2024-02-15")}
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))
		assert.NotEqual(t, uuid.Nil, first.ID)

		list, err := repo.ListByUsername(ctx, "carol")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, second.ID, list[0].ID)
		assert.Equal(t, "2024-01-15", list[1].DueDate.Format(loan.DateLayout))
		assert.Nil(t, list[1].ReturnedDate)

		empty, err := repo.ListByUsername(ctx, "dave")
		require.NoError(t, err)
		assert.Empty(t, empty)

		_, err = repo.MarkReturned(ctx, first.ID, "dave", day("2024-01-10"))
		require.ErrorIs(t, err, loan.ErrNotFound)

		got, err := repo.MarkReturned(ctx, first.ID, "carol", day("2024-01-10"))
		require.NoError(t, err)
		require.NotNil(t, got.ReturnedDate)
		assert.Equal(t, "2024-01-10", got.ReturnedDate.Format(loan.DateLayout))

		again, err := repo.MarkReturned(ctx, first.ID, "carol", day("2024-01-12"))
		require.NoError(t, err)
		assert.Equal(t, "2024-01-10", again.ReturnedDate.Format(loan.DateLayout))

		_, err = repo.MarkReturned(ctx, uuid.New(), "carol", day("2024-01-12"))
		require.ErrorIs(t, err, loan.ErrNotFound)
	})

	t.Run("outbox in transaction", func(t *testing.T) {
		repo := NewOutboxRepo(env.DB)

		rollback := errors.New("rollback")
		err := env.Tx.WithTx(ctx, func(ctx context.Context) error {
			require.NoError(t, repo.Enqueue(ctx, "k-rolled-back", outbox.KindLoanCreated, []byte(`{}`)))
			return rollback
		})
		require.ErrorIs(t, err, rollback)

		require.NoError(t, env.Tx.WithTx(ctx, func(ctx context.Context) error {
			return repo.Enqueue(ctx, "k-1", outbox.KindLoanReturned, []byte(`{"a":1}`))
		}))
		require.NoError(t, repo.Enqueue(ctx, "k-1", outbox.KindLoanReturned, []byte(`{"dup":true}`)))

		msgs, err := repo.PickBatch(ctx, 10, time.Minute)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "k-1", msgs[0].IdempotencyKey)
		assert.Equal(t, outbox.KindLoanReturned, msgs[0].Kind)
		assert.JSONEq(t, `{"a":1}`, string(msgs[0].Data))
		assert.Equal(t, outbox.StatusInProgress, msgs[0].Status)

		again, err := repo.PickBatch(ctx, 10, time.Minute)
		require.NoError(t, err)
		assert.Empty(t, again)

		require.NoError(t, repo.MarkSuccess(ctx, []string{"k-1"}))

		var status string
		require.NoError(t, env.SQL.QueryRow(`SELECT status FROM outbox WHERE idempotency_key = 'k-1'`).Scan(&status))
		assert.Equal(t, string(outbox.StatusSuccess), status)
	})
}
