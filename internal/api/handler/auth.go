package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Rrens/meeting-buddy/internal/api/middleware"
	"github.com/Rrens/meeting-buddy/internal/api/response"
	"github.com/Rrens/meeting-buddy/internal/domain"
)

var validate = validator.New()

// Authenticator logs users in and registers new accounts
type Authenticator interface {
	Login(ctx context.Context, input domain.UserLogin) (domain.AuthState, error)
	Register(ctx context.Context, input domain.UserCreate) (domain.AuthState, error)
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	auth Authenticator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register handles user registration
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input domain.UserCreate
	if !decode(w, r, &input) {
		return
	}

	if err := validate.Struct(input); err != nil {
		response.ValidationFailed(w, err)
		return
	}

	state, err := h.auth.Register(r.Context(), input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.Created(w, state)
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if !decode(w, r, &input) {
		return
	}

	if err := validate.Struct(input); err != nil {
		response.ValidationFailed(w, err)
		return
	}

	state, err := h.auth.Login(r.Context(), input)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.OK(w, state)
}

// Me returns the current authenticated user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		response.Unauthorized(w, "unauthorized")
		return
	}

	response.OK(w, user)
}
