package loan

import (
	"strings"
	"time"

	"github.com/NordCoder/loanbook/internal/domain/loan"
	"github.com/NordCoder/loanbook/internal/services/api/httpio"
)

type addRequest struct {
	Username   string `json:"username"`
	BookTitle  string `json:"bookTitle" validate:"required"`
	BookAuthor string `json:"bookAuthor" validate:"required"`
	LoanDate   string `json:"loanDate" validate:"iso8601"`
	DueDate    string `json:"dueDate" validate:"iso8601"`
}

func (r *addRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.BookTitle = strings.TrimSpace(r.BookTitle)
	r.BookAuthor = strings.TrimSpace(r.BookAuthor)
}

var addMessages = httpio.Messages{
	"bookTitle.required":  "Book name is required",
	"bookAuthor.required": "Author name is required",
	"loanDate.iso8601":    "Invalid loan date format",
	"dueDate.iso8601":     "Invalid due date format",
}

type returnRequest struct {
	ID string `json:"id"`
}

type listRequest struct {
	Username string `json:"username"`
}

type loanResponse struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	BookTitle    string  `json:"bookTitle"`
	BookAuthor   string  `json:"bookAuthor"`
	LoanDate     string  `json:"loanDate"`
	DueDate      string  `json:"dueDate"`
	ReturnedDate *string `json:"returnedDate"`
	Overdue      bool    `json:"overdue"`
}

func toResponse(l *loan.Loan, now func() time.Time) loanResponse {
	out := loanResponse{
		ID:         l.ID.String(),
		Username:   l.Username,
		BookTitle:  l.BookTitle,
		BookAuthor: l.BookAuthor,
		LoanDate:   l.LoanDate.Format(loan.DateLayout),
		DueDate:    l.DueDate.Format(loan.DateLayout),
		Overdue:    l.Overdue(now()),
	}
	if l.ReturnedDate != nil {
		s := l.ReturnedDate.Format(loan.DateLayout)
		out.ReturnedDate = &s
	}
	return out
}
