package loan

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/NordCoder/loanbook/internal/domain/loan"
	"github.com/NordCoder/loanbook/internal/domain/outbox"
	"github.com/google/uuid"
)

type memLoans struct {
	mu    sync.Mutex
	loans map[uuid.UUID]loan.Loan
	err   error
}

func newMemLoans() *memLoans { return &memLoans{loans: map[uuid.UUID]loan.Loan{}} }

func (m *memLoans) Create(_ context.Context, l *loan.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	l.CreatedAt = time.Now()
	m.loans[l.ID] = *l
	return nil
}

func (m *memLoans) MarkReturned(_ context.Context, id uuid.UUID, username string, on time.Time) (*loan.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	l, ok := m.loans[id]
	if !ok || l.Username != username {
		return nil, loan.ErrNotFound
	}
	if l.ReturnedDate == nil {
		d := on
		l.ReturnedDate = &d
		m.loans[id] = l
	}
	return &l, nil
}

func (m *memLoans) ListByUsername(_ context.Context, username string) ([]*loan.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*loan.Loan, 0)
	for _, l := range m.loans {
		if l.Username == username {
			cp := l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LoanDate.After(out[j].LoanDate) })
	return out, nil
}

type enqueued struct {
	key  string
	kind outbox.Kind
	data []byte
}

type memOutbox struct {
	mu   sync.Mutex
	msgs []enqueued
	err  error
}

func (m *memOutbox) Enqueue(_ context.Context, key string, kind outbox.Kind, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, e := range m.msgs {
		if e.key == key {
			return nil
		}
	}
	m.msgs = append(m.msgs, enqueued{key: key, kind: kind, data: data})
	return nil
}

func (m *memOutbox) PickBatch(context.Context, int, time.Duration) ([]outbox.Message, error) {
	return nil, nil
}

func (m *memOutbox) MarkSuccess(context.Context, []string) error { return nil }

type passTx struct{ calls int }

func (p *passTx) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type testDeps struct {
	loans  *memLoans
	outbox *memOutbox
	tx     *passTx
	uc     *Usecase
}

var testNow = time.Date(2024, 2, 10, 15, 30, 0, 0, time.UTC)

func newTestDeps() *testDeps {
	d := &testDeps{loans: newMemLoans(), outbox: &memOutbox{}, tx: &passTx{}}
	d.uc = New(d.loans, d.outbox, d.tx, func() time.Time { return testNow })
	return d
}

func day(s string) time.Time {
	t, err := time.Parse(loan.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
