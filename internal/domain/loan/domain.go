package loan

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("loan not found")

// DateLayout is the wire format of loan dates.
const DateLayout = "2006-01-02"

type Loan struct {
	ID           uuid.UUID
	Username     string
	BookTitle    string
	BookAuthor   string
	LoanDate     time.Time
	DueDate      time.Time
	ReturnedDate *time.Time
	CreatedAt    time.Time
}

// Overdue reports whether the book is still out after its due date.
func (l *Loan) Overdue(now time.Time) bool {
	if l.ReturnedDate != nil {
		return false
	}
	today := now.UTC().Truncate(24 * time.Hour)
	return l.DueDate.Before(today)
}

type EventType string

const (
	EventCreated  EventType = "loan.created"
	EventReturned EventType = "loan.returned"
)

// Event is published to the loan-events topic through the outbox.
type Event struct {
	Type       EventType `json:"type"`
	LoanID     uuid.UUID `json:"loan_id"`
	Username   string    `json:"username"`
	BookTitle  string    `json:"book_title"`
	BookAuthor string    `json:"book_author"`
	LoanDate   string    `json:"loan_date"`
	DueDate    string    `json:"due_date"`
	Returned   *string   `json:"returned_date,omitempty"`
	At         time.Time `json:"at"`
}

func NewEvent(t EventType, l *Loan, at time.Time) Event {
	ev := Event{
		Type:       t,
		LoanID:     l.ID,
		Username:   l.Username,
		BookTitle:  l.BookTitle,
		BookAuthor: l.BookAuthor,
		LoanDate:   l.LoanDate.Format(DateLayout),
		DueDate:    l.DueDate.Format(DateLayout),
		At:         at,
	}
	if l.ReturnedDate != nil {
		s := l.ReturnedDate.Format(DateLayout)
		ev.Returned = &s
	}
	return ev
}
