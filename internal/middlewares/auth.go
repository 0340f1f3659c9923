package middlewares

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avorobev/authd/internal/logger"
	"github.com/avorobev/authd/internal/sessions"
)

// AuthMiddleware guards a route group: it resolves the request credential
// through the session binding and attaches the identity to the context.
// Absent and malformed credentials both produce 401; only unexpected
// backend failures produce 500.
func AuthMiddleware(binding sessions.Binding) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := binding.GetUser(r)
			if err != nil {
				switch {
				case errors.Is(err, sessions.ErrUnauthenticated):
					unauthorized(w, "not authenticated")
				case errors.Is(err, sessions.ErrMalformedCredential):
					logger.Log.Warnw("malformed credential presented", "uri", r.RequestURI)
					unauthorized(w, "invalid credential")
				default:
					logger.Log.Errorw("session lookup failed", "err", err)
					w.WriteHeader(http.StatusInternalServerError)
				}
				return
			}

			next.ServeHTTP(w, r.WithContext(sessions.WithSession(r.Context(), session)))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"message": message, "code": "unauthorized"},
	})
}
