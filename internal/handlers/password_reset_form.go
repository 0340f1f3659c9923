package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avorobev/authd/internal/logger"
	"github.com/avorobev/authd/internal/services"
)

// ResetFormStatus reports whether a reset request id is still live
// swagger:model ResetFormStatus
type ResetFormStatus struct {
	Valid bool `json:"valid"`
}

// PerformResetRequest represents the JSON body completing a password reset
// swagger:model PerformResetRequest
type PerformResetRequest struct {
	// Reset request id from the mailed link
	// required: true
	RequestID string `json:"requestId"`

	// New password
	// required: true
	Password1 string `json:"password1"`

	// New password, repeated
	// required: true
	Password2 string `json:"password2"`
}

// PerformResetResponse represents a completed reset
// swagger:model PerformResetResponse
type PerformResetResponse struct {
	Message string `json:"message"`
}

// NewResetFormHandler returns the handler behind the mailed reset link.
// The path and the "requestId" parameter are part of the mail-template
// contract. It only reports whether the request is still live; the page
// rendering around it is not this service's concern.
// @Summary Check a password-reset request
// @Tags auth
// @Produce json
// @Param requestId query string true "Reset request id"
// @Success 200 {object} handlers.ResetFormStatus "Liveness of the request"
// @Router /auth/password-reset-form [get]
func NewResetFormHandler(svc PasswordResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.URL.Query().Get("requestId")
		if requestID == "" {
			writeError(w, http.StatusBadRequest, CodeValidation, "missing requestId parameter", nil)
			return
		}

		valid, err := svc.FindResetRequest(r.Context(), requestID)
		if err != nil {
			logger.Log.Errorw("reset request lookup failed", "err", err)
			writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error", err)
			return
		}

		writeJSON(w, http.StatusOK, ResetFormStatus{Valid: valid})
	}
}

// NewPerformResetHandler returns the handler completing a password reset.
// @Summary Complete a password reset
// @Tags auth
// @Accept json
// @Produce json
// @Param performReset body handlers.PerformResetRequest true "Reset completion"
// @Success 200 {object} handlers.PerformResetResponse "Password replaced"
// @Failure 400 {object} handlers.ErrorBody "Mismatched passwords or dead request"
// @Router /auth/password-reset-form [post]
func NewPerformResetHandler(svc PasswordResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PerformResetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, CodeValidation, "invalid request body", err)
			return
		}

		err := svc.PerformReset(r.Context(), req.RequestID, req.Password1, req.Password2)
		if err != nil {
			var vErr *services.ValidationError
			switch {
			case errors.Is(err, services.ErrPasswordMismatch):
				writeError(w, http.StatusBadRequest, CodeValidation, "passwords do not match", nil)
			case errors.Is(err, services.ErrInvalidResetRequest):
				writeError(w, http.StatusBadRequest, CodeInvalidRequest, "invalid or expired reset request", nil)
			case errors.As(err, &vErr):
				writeError(w, http.StatusBadRequest, CodeValidation, vErr.Error(), nil)
			default:
				logger.Log.Errorw("password reset failed", "err", err)
				writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error", err)
			}
			return
		}

		writeJSON(w, http.StatusOK, PerformResetResponse{Message: "password updated"})
	}
}
