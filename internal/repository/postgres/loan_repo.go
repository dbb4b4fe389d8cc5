package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/NordCoder/loanbook/internal/domain/loan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ loan.Repo = (*LoanRepo)(nil)

type LoanRepo struct{ db *DB }

func NewLoanRepo(db *DB) *LoanRepo { return &LoanRepo{db: db} }

const loanCols = `id, username, book_title, book_author, loan_date, due_date, returned_date, created_at`

const (
	qLoanInsert = `
INSERT INTO loans (id, username, book_title, book_author, loan_date, due_date)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING created_at;`

	qLoanReturn = `
UPDATE loans
SET returned_date = COALESCE(returned_date, $3)
WHERE id = $1 AND username = $2
RETURNING ` + loanCols + `;`

	qLoanByUser = `
SELECT ` + loanCols + `
FROM loans
WHERE username = $1
ORDER BY loan_date DESC, created_at DESC;`
)

func scanLoan(row pgx.Row, l *loan.Loan) error {
	return row.Scan(
		&l.ID,
		&l.Username,
		&l.BookTitle,
		&l.BookAuthor,
		&l.LoanDate,
		&l.DueDate,
		&l.ReturnedDate,
		&l.CreatedAt,
	)
}

func (r *LoanRepo) Create(ctx context.Context, l *loan.Loan) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qLoanInsert,
		l.ID, l.Username, l.BookTitle, l.BookAuthor, l.LoanDate, l.DueDate,
	).Scan(&l.CreatedAt); err != nil {
		return storeErr("loan insert", err)
	}
	return nil
}

func (r *LoanRepo) MarkReturned(ctx context.Context, id uuid.UUID, username string, on time.Time) (*loan.Loan, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var l loan.Loan
	err := scanLoan(r.db.execQueryer(ctx).QueryRow(ctx, qLoanReturn, id, username, on), &l)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, loan.ErrNotFound
	}
	if err != nil {
		return nil, storeErr("loan return", err)
	}
	return &l, nil
}

func (r *LoanRepo) ListByUsername(ctx context.Context, username string) ([]*loan.Loan, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	rows, err := r.db.execQueryer(ctx).Query(ctx, qLoanByUser, username)
	if err != nil {
		return nil, storeErr("query loans", err)
	}
	defer rows.Close()

	out := make([]*loan.Loan, 0)
	for rows.Next() {
		var l loan.Loan
		if err := scanLoan(rows, &l); err != nil {
			return nil, storeErr("scan loan", err)
		}
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("loan rows", err)
	}
	return out, nil
}
