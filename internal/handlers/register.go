package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/avorobev/authd/internal/logger"
	"github.com/avorobev/authd/internal/services"
)

// Registerer defines the interface that the service must implement.
type Registerer interface {
	Register(ctx context.Context, username, email, password string, askForValidation bool) (uuid.UUID, error)
}

// RegisterRequest represents the JSON body for user registration
// swagger:model RegisterRequest
type RegisterRequest struct {
	// Username (optional, defaults to the email)
	// default: john_doe
	Username string `json:"username"`

	// Email
	// required: true
	// default: john@example.com
	Email string `json:"email"`

	// Password
	// required: true
	// default: secret123!
	Password string `json:"password"`
}

// RegisterResponse represents a successful registration response
// swagger:model RegisterResponse
type RegisterResponse struct {
	// New user id
	ID uuid.UUID `json:"id"`

	// Whether email verification is pending
	ValidationPending bool `json:"validation_pending"`
}

// NewRegisterHandler returns an HTTP handler for user registration.
// With askForValidation the new account stays pending until the mailed
// verification link is followed.
// @Summary Register a new user
// @Description Creates a new user account and, unless pre-validated, sends a verification mail.
// @Tags auth
// @Accept json
// @Produce json
// @Param registerRequest body handlers.RegisterRequest true "User registration request"
// @Success 201 {object} handlers.RegisterResponse "User successfully registered"
// @Failure 400 {object} handlers.ErrorBody "Invalid input or email/username already taken"
// @Router /auth/register [post]
func NewRegisterHandler(svc Registerer, askForValidation bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, CodeValidation, "invalid request body", err)
			return
		}

		id, err := svc.Register(r.Context(), req.Username, req.Email, req.Password, askForValidation)
		if err != nil {
			var vErr *services.ValidationError
			switch {
			case errors.As(err, &vErr):
				writeError(w, http.StatusBadRequest, CodeValidation, vErr.Error(), nil)
			case errors.Is(err, services.ErrUserAlreadyExists):
				writeError(w, http.StatusBadRequest, CodeUserExists, "email or username already exists", nil)
			default:
				logger.Log.Errorw("registration failed", "err", err)
				writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error", err)
			}
			return
		}

		writeJSON(w, http.StatusCreated, RegisterResponse{
			ID:                id,
			ValidationPending: askForValidation,
		})
	}
}
