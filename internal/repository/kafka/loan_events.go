package kafka

import (
	"context"

	"github.com/NordCoder/loanbook/internal/domain/kafka"
	"github.com/NordCoder/loanbook/internal/domain/loan"
)

type LoanEventsKafka struct {
	p *Producer
}

func NewLoanEventsKafka(p *Producer) *LoanEventsKafka { return &LoanEventsKafka{p: p} }

var _ kafka.LoanEvents = (*LoanEventsKafka)(nil)

// PublishLoanEvent keys by username so one member's events stay ordered.
func (e *LoanEventsKafka) PublishLoanEvent(ctx context.Context, ev loan.Event) error {
	return e.p.PublishJSON(ctx, []byte(ev.Username), ev)
}
