package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/avorobev/authd/internal/logger"
	"github.com/avorobev/authd/internal/services"
)

// HashValidator defines the interface for redeeming verification tokens.
type HashValidator interface {
	ValidateHash(ctx context.Context, hash string) (*services.ValidatedUser, error)
}

// NewValidateHandler returns the HTTP handler behind the verification link
// mailed at registration. The path and the "seq" parameter are part of the
// mail-template contract.
// @Summary Validate a registration
// @Description Redeems the single-use token from the verification mail.
// @Tags auth
// @Produce json
// @Param seq query string true "Validation token"
// @Success 200 {object} services.ValidatedUser "Account activated"
// @Failure 400 {object} handlers.ErrorBody "Unknown or already-used token"
// @Router /auth/validate [get]
func NewValidateHandler(svc HashValidator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seq := r.URL.Query().Get("seq")
		if seq == "" {
			writeError(w, http.StatusBadRequest, CodeValidation, "missing seq parameter", nil)
			return
		}

		validated, err := svc.ValidateHash(r.Context(), seq)
		if err != nil {
			if errors.Is(err, services.ErrInvalidHash) {
				writeError(w, http.StatusBadRequest, CodeInvalidHash, "invalid or already used validation link", nil)
				return
			}
			logger.Log.Errorw("validation failed", "err", err)
			writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error", err)
			return
		}

		writeJSON(w, http.StatusOK, validated)
	}
}
