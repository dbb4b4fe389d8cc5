package auth

import (
	"errors"
	"net/http"

	"github.com/NordCoder/loanbook/internal/auth"
	"github.com/NordCoder/loanbook/internal/obs"
	"github.com/NordCoder/loanbook/internal/services/api/httpio"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Controller struct {
	uc  *Usecase
	log *zap.Logger
}

func NewController(uc *Usecase, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{uc: uc, log: log}
}

// Routes mounts the public auth endpoints.
func (c *Controller) Routes(r chi.Router) {
	r.Post("/login", c.Login)
	r.Post("/signup", c.Signup)
	r.Post("/refresh-token", c.Refresh)
	r.Post("/logout", c.Logout)
}

func (c *Controller) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpio.DecodeJSON(r, &req); err != nil {
		httpio.WriteError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	req.normalize()
	if errs := httpio.Validate(&req, loginMessages); errs != nil {
		httpio.WriteValidation(w, errs)
		return
	}

	s, err := c.uc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		c.writeErr(w, r, err)
		return
	}
	obs.WithTrace(r.Context(), c.log).Info("auth.login", zap.String("username", s.Username))
	httpio.WriteJSON(w, http.StatusOK, sessionResponse{User: s.Username, Token: s.AccessToken, RefreshToken: s.RefreshToken})
}

func (c *Controller) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpio.DecodeJSON(r, &req); err != nil {
		httpio.WriteError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}
	req.normalize()
	if errs := httpio.Validate(&req, signupMessages); errs != nil {
		httpio.WriteValidation(w, errs)
		return
	}

	s, err := c.uc.Signup(r.Context(), req.Username, req.Password, req.ConfirmPassword)
	if err != nil {
		c.writeErr(w, r, err)
		return
	}
	obs.WithTrace(r.Context(), c.log).Info("auth.signup", zap.String("username", s.Username))
	httpio.WriteJSON(w, http.StatusCreated, sessionResponse{User: s.Username, Token: s.AccessToken, RefreshToken: s.RefreshToken})
}

func (c *Controller) Refresh(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := httpio.DecodeJSON(r, &req); err != nil {
		httpio.WriteError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	access, err := c.uc.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		c.writeErr(w, r, err)
		return
	}
	httpio.WriteJSON(w, http.StatusOK, accessResponse{AccessToken: access})
}

func (c *Controller) Logout(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := httpio.DecodeJSON(r, &req); err != nil {
		httpio.WriteError(w, http.StatusBadRequest, "Malformed JSON body")
		return
	}

	if err := c.uc.Logout(r.Context(), req.RefreshToken); err != nil {
		c.writeErr(w, r, err)
		return
	}
	httpio.WriteJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (c *Controller) writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := mapErr(err)
	if status == http.StatusInternalServerError {
		obs.WithTrace(r.Context(), c.log).Error("auth request failed",
			zap.String("path", r.URL.Path), zap.Error(err))
	}
	httpio.WriteError(w, status, msg)
}

func mapErr(err error) (int, string) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest, "Invalid username or password"
	case errors.Is(err, ErrUserNotFound):
		return http.StatusBadRequest, "User not found"
	case errors.Is(err, ErrInvalidPassword):
		return http.StatusBadRequest, "Invalid password"
	case errors.Is(err, ErrPasswordMismatch):
		return http.StatusBadRequest, "Passwords do not match"
	case errors.Is(err, auth.ErrPasswordTooLong):
		return http.StatusBadRequest, "Password is too long"
	case errors.Is(err, ErrDuplicateIdentity):
		return http.StatusBadRequest, "Username already taken"
	case errors.Is(err, ErrLogoutFailed):
		return http.StatusBadRequest, "Issue logging out"
	case errors.Is(err, ErrMissingToken):
		return http.StatusUnauthorized, "Refresh token required"
	case errors.Is(err, ErrTokenRevoked),
		errors.Is(err, auth.ErrInvalidSignature),
		errors.Is(err, auth.ErrExpired):
		return http.StatusForbidden, "Invalid refresh token"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}
