package handlers

import (
	"net/http"

	"github.com/avorobev/authd/internal/sessions"
)

// NewMeHandler returns the identity attached to the request by the auth
// middleware. Mounted behind middlewares.Auth.
// @Summary Current user
// @Tags auth
// @Produce json
// @Success 200 {object} sessions.Session "Authenticated identity"
// @Failure 401 {object} handlers.ErrorBody "Not authenticated"
// @Security BearerAuth
// @Router /auth/me [get]
func NewMeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, ok := sessions.FromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, CodeUnauthorized, "not authenticated", nil)
			return
		}
		writeJSON(w, http.StatusOK, session)
	}
}
