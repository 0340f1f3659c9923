package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avorobev/authd/internal/logger"
	"github.com/avorobev/authd/internal/services"
)

// PasswordResetter defines the interface for the reset flow.
type PasswordResetter interface {
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	FindResetRequest(ctx context.Context, requestID string) (bool, error)
	PerformReset(ctx context.Context, requestID, newPwd1, newPwd2 string) error
}

// ResetRequestBody represents the JSON body for requesting a password reset
// swagger:model ResetRequestBody
type ResetRequestBody struct {
	// Email of the account
	// required: true
	Email string `json:"email"`
}

// ResetRequestResponse represents the uniform reset-request acknowledgement
// swagger:model ResetRequestResponse
type ResetRequestResponse struct {
	Message string `json:"message"`
}

// NewPasswordResetRequestHandler returns the handler starting a reset flow.
// The response is the same whether or not the email belongs to an account,
// so the endpoint cannot be used to enumerate registered addresses.
// @Summary Request a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param resetRequest body handlers.ResetRequestBody true "Account email"
// @Success 202 {object} handlers.ResetRequestResponse "Accepted"
// @Failure 429 {object} handlers.ErrorBody "Cool-down window not elapsed"
// @Router /auth/password-reset [post]
func NewPasswordResetRequestHandler(svc PasswordResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ResetRequestBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
			writeError(w, http.StatusBadRequest, CodeValidation, "invalid request body", err)
			return
		}

		_, err := svc.RequestPasswordReset(r.Context(), req.Email)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserNotFound):
				// Deliberately indistinguishable from success.
			case errors.Is(err, services.ErrTooManyRequests):
				writeError(w, http.StatusTooManyRequests, CodeTooManyRequests, "too many requests, retry later", nil)
				return
			default:
				logger.Log.Errorw("password reset request failed", "err", err)
				writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error", err)
				return
			}
		}

		writeJSON(w, http.StatusAccepted, ResetRequestResponse{
			Message: "if the account exists, a reset link has been sent",
		})
	}
}
