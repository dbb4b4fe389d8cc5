package loan

import (
	"errors"
	"net/http"
	"time"

	"github.com/NordCoder/loanbook/internal/domain/loan"
	"github.com/NordCoder/loanbook/internal/obs"
	apiauth "github.com/NordCoder/loanbook/internal/services/api/auth"
	"github.com/NordCoder/loanbook/internal/services/api/httpio"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Controller struct {
	uc  *Usecase
	log *zap.Logger
	now func() time.Time
}

func NewController(uc *Usecase, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{uc: uc, log: log, now: uc.clk}
}

// Routes mounts the loan endpoints. They expect the auth guard in front.
func (c *Controller) Routes(r chi.Router) {
	r.Post("/add-loan", c.Add)
	r.Post("/return-book", c.Return)
	r.Post("/loan-records", c.List)
}

func (c *Controller) Add(w http.ResponseWriter, r *http.Request) {
	caller, _ := apiauth.IdentityFromCtx(r.Context())

	var req addRequest
	if err := httpio.DecodeJSON(r, &req); err != nil {
		httpio.WriteError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	req.normalize()
	if errs := httpio.Validate(&req, addMessages); errs != nil {
		httpio.WriteValidation(w, errs)
		return
	}
	loanDate, _ := httpio.ParseISO8601(req.LoanDate)
	dueDate, _ := httpio.ParseISO8601(req.DueDate)

	l, err := c.uc.Add(r.Context(), caller, AddInput{
		Username:   req.Username,
		BookTitle:  req.BookTitle,
		BookAuthor: req.BookAuthor,
		LoanDate:   loanDate,
		DueDate:    dueDate,
	})
	if err != nil {
		c.writeErr(w, r, err)
		return
	}
	obs.WithTrace(r.Context(), c.log).Info("loan.add",
		zap.String("username", l.Username), zap.String("loan_id", l.ID.String()))
	httpio.WriteJSON(w, http.StatusOK, toResponse(l, c.now))
}

func (c *Controller) Return(w http.ResponseWriter, r *http.Request) {
	caller, _ := apiauth.IdentityFromCtx(r.Context())

	var req returnRequest
	if err := httpio.DecodeJSON(r, &req); err != nil {
		httpio.WriteError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		httpio.WriteError(w, http.StatusBadRequest, "Invalid loan id")
		return
	}

	l, err := c.uc.Return(r.Context(), caller, id)
	if err != nil {
		c.writeErr(w, r, err)
		return
	}
	obs.WithTrace(r.Context(), c.log).Info("loan.return",
		zap.String("username", l.Username), zap.String("loan_id", l.ID.String()))
	httpio.WriteJSON(w, http.StatusOK, toResponse(l, c.now))
}

func (c *Controller) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := apiauth.IdentityFromCtx(r.Context())

	var req listRequest
	if err := httpio.DecodeJSON(r, &req); err != nil {
		httpio.WriteError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	loans, err := c.uc.List(r.Context(), caller, req.Username)
	if err != nil {
		c.writeErr(w, r, err)
		return
	}
	out := make([]loanResponse, 0, len(loans))
	for _, l := range loans {
		out = append(out, toResponse(l, c.now))
	}
	httpio.WriteJSON(w, http.StatusOK, out)
}

func (c *Controller) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := mapErr(err)
	if status == http.StatusInternalServerError {
		obs.WithTrace(r.Context(), c.log).Error("loan request failed",
			zap.String("path", r.URL.Path), zap.Error(err))
	}
	httpio.WriteError(w, status, msg)
}

func mapErr(err error) (int, string) {
	switch {
	case errors.Is(err, ErrMissingCaller):
		return http.StatusUnauthorized, "Access token required"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "Cannot access another user's loans"
	case errors.Is(err, ErrDueBeforeLoan):
		return http.StatusBadRequest, "Due date must not be before loan date"
	case errors.Is(err, ErrLoanNotFound), errors.Is(err, loan.ErrNotFound):
		return http.StatusNotFound, "Loan record not found"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
