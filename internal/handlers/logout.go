package handlers

import (
	"net/http"

	"github.com/avorobev/authd/internal/logger"
	"github.com/avorobev/authd/internal/sessions"
)

// NewLogoutHandler returns an HTTP handler that invalidates the caller's
// credential. With the cookie-session strategy the session is destroyed
// server-side; with the token strategy only the cookie is cleared.
// @Summary Log out
// @Tags auth
// @Success 204 "Credential invalidated"
// @Router /auth/logout [post]
func NewLogoutHandler(binding sessions.Binding) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := binding.Logout(w, r); err != nil {
			logger.Log.Errorw("logout failed", "err", err)
			writeError(w, http.StatusInternalServerError, CodeInternal, "internal server error", err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
