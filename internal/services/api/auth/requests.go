package auth

import (
	"strings"

	"github.com/NordCoder/loanbook/internal/services/api/httpio"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *loginRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

var loginMessages = httpio.Messages{
	"username.required": "Username is required",
	"password.required": "Password is required",
}

type signupRequest struct {
	Username        string  `json:"username" validate:"alphanum,min=3"`
	Password        string  `json:"password" validate:"min=6,max=72,hasdigit,hasupper"`
	ConfirmPassword *string `json:"confirmPassword"`
}

func (r *signupRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
}

var signupMessages = httpio.Messages{
	"username.alphanum": "Username must be alphanumeric",
	"username.min":      "Username must be at least 3 characters long",
	"password.min":      "Password must be at least 6 characters long",
	"password.max":      "Password must be at most 72 characters long",
	"password.hasdigit": "Password must contain at least one number",
	"password.hasupper": "Password must contain at least one uppercase letter",
}

type tokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type sessionResponse struct {
	User         string `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type accessResponse struct {
	AccessToken string `json:"accessToken"`
}

type messageResponse struct {
	Message string `json:"message"`
}
