package loan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NordCoder/loanbook/internal/domain/loan"
	"github.com/NordCoder/loanbook/internal/domain/outbox"
	outboxsvc "github.com/NordCoder/loanbook/internal/outbox"
	"github.com/google/uuid"
)

var (
	ErrForbidden     = errors.New("forbidden")
	ErrDueBeforeLoan = errors.New("due date before loan date")
	ErrLoanNotFound  = errors.New("loan not found")
	ErrMissingCaller = errors.New("missing caller identity")
)

type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AddInput struct {
	Username   string
	BookTitle  string
	BookAuthor string
	LoanDate   time.Time
	DueDate    time.Time
}

type Usecase struct {
	repo   loan.Repo
	outbox outbox.Repository
	tx     Transactor
	clk    func() time.Time
}

func New(repo loan.Repo, ob outbox.Repository, tx Transactor, clk func() time.Time) *Usecase {
	if clk == nil {
		clk = func() time.Time { return time.Now().UTC() }
	}
	return &Usecase{repo: repo, outbox: ob, tx: tx, clk: clk}
}

// owner resolves the username a request acts on. Members only see and
// record their own loans.
func owner(caller, requested string) (string, error) {
	if caller == "" {
		return "", ErrMissingCaller
	}
	if requested == "" || requested == caller {
		return caller, nil
	}
	return "", ErrForbidden
}

func (u *Usecase) Add(ctx context.Context, caller string, in AddInput) (*loan.Loan, error) {
	name, err := owner(caller, in.Username)
	if err != nil {
		return nil, err
	}
	if in.DueDate.Before(in.LoanDate) {
		return nil, ErrDueBeforeLoan
	}
	l := &loan.Loan{
		ID:         uuid.New(),
		Username:   name,
		BookTitle:  in.BookTitle,
		BookAuthor: in.BookAuthor,
		LoanDate:   in.LoanDate,
		DueDate:    in.DueDate,
	}
	err = u.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := u.repo.Create(ctx, l); err != nil {
			return err
		}
		return u.enqueue(ctx, outbox.KindLoanCreated, loan.NewEvent(loan.EventCreated, l, u.clk()))
	})
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Return marks the caller's loan returned today. Returning twice keeps the
// first date.
func (u *Usecase) Return(ctx context.Context, caller string, id uuid.UUID) (*loan.Loan, error) {
	if caller == "" {
		return nil, ErrMissingCaller
	}
	now := u.clk().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var out *loan.Loan
	err := u.tx.WithTx(ctx, func(ctx context.Context) error {
		l, err := u.repo.MarkReturned(ctx, id, caller, today)
		if err != nil {
			if errors.Is(err, loan.ErrNotFound) {
				return ErrLoanNotFound
			}
			return err
		}
		out = l
		return u.enqueue(ctx, outbox.KindLoanReturned, loan.NewEvent(loan.EventReturned, l, now))
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (u *Usecase) List(ctx context.Context, caller, username string) ([]*loan.Loan, error) {
	name, err := owner(caller, username)
	if err != nil {
		return nil, err
	}
	return u.repo.ListByUsername(ctx, name)
}

func (u *Usecase) enqueue(ctx context.Context, kind outbox.Kind, ev loan.Event) error {
	data, err := outboxsvc.EncodeLoanEvent(ev)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ev.Type, err)
	}
	key := fmt.Sprintf("%s:%s", ev.Type, ev.LoanID)
	return u.outbox.Enqueue(ctx, key, kind, data)
}
