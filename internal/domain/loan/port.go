package loan

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repo interface {
	Create(ctx context.Context, l *Loan) error
	// MarkReturned sets the returned date of the owner's loan, keeping an
	// earlier one. ErrNotFound when the loan does not exist for username.
	MarkReturned(ctx context.Context, id uuid.UUID, username string, on time.Time) (*Loan, error)
	ListByUsername(ctx context.Context, username string) ([]*Loan, error)
}
