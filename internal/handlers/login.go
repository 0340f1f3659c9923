package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avorobev/authd/internal/logger"
	"github.com/avorobev/authd/internal/models"
	"github.com/avorobev/authd/internal/services"
	"github.com/avorobev/authd/internal/sessions"
)

// Loginer defines the interface that the login service must implement.
type Loginer interface {
	Login(ctx context.Context, usernameOrEmail, password string) (*models.UserDB, error)
}

// LoginRequest represents the JSON body for user login
// swagger:model LoginRequest
type LoginRequest struct {
	// Username or email
	// required: true
	// default: john_doe
	Username string `json:"username"`

	// Password
	// required: true
	// default: secret123!
	Password string `json:"password"`
}

// LoginResponse represents a successful login response
// swagger:model LoginResponse
type LoginResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// NewLoginHandler returns an HTTP handler for user login. On success the
// session binding attaches the per-request credential (session cookie or
// signed token) to the response.
//
// Bad credentials and a still-unverified account produce the identical 401
// body so callers cannot probe which emails are registered.
// @Summary User login
// @Description Authenticate by username or email and establish a session
// @Tags auth
// @Accept json
// @Produce json
// @Param loginRequest body handlers.LoginRequest true "Login request"
// @Success 200 {object} handlers.LoginResponse "Session established"
// @Failure 401 {object} handlers.ErrorBody "Invalid username or password"
// @Failure 429 {object} handlers.ErrorBody "Cool-down window not elapsed"
// @Router /auth/login [post]
func NewLoginHandler(svc Loginer, binding sessions.Binding) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, CodeValidation, "invalid request body", err)
			return
		}

		user, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrInvalidCredentials),
				errors.Is(err, services.ErrValidationRequired):
				writeError(w, http.StatusUnauthorized, CodeUnauthorized, "invalid username or password", nil)
			case errors.Is(err, services.ErrTooManyRequests):
				writeError(w, http.StatusTooManyRequests, CodeTooManyRequests, "too many requests, retry later", nil)
			default:
				logger.Log.Errorw("login failed", "err", err)
				writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error", err)
			}
			return
		}

		if err := binding.SetUser(w, r, user.UserID, user.Email); err != nil {
			logger.Log.Errorw("failed to establish session", "err", err)
			writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error", err)
			return
		}

		writeJSON(w, http.StatusOK, LoginResponse{
			ID:    user.UserID.String(),
			Email: user.Email,
		})
	}
}
