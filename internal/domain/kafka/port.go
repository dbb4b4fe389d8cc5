package kafka

import (
	"context"

	"github.com/NordCoder/loanbook/internal/domain/loan"
)

type LoanEvents interface {
	PublishLoanEvent(ctx context.Context, ev loan.Event) error
}
