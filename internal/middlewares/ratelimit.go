package middlewares

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avorobev/authd/internal/ratelimit"
)

// RateLimitMiddleware applies process-wide admission control to one
// endpoint: excess concurrent attempts are rejected outright with 429,
// never queued. Per-identity throttling is handled separately by the auth
// service's cool-down.
func RateLimitMiddleware(limiter *ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := limiter.TryAcquire(); err != nil {
				if errors.Is(err, ratelimit.ErrRateLimited) {
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusTooManyRequests)
					json.NewEncoder(w).Encode(map[string]any{
						"error": map[string]string{"message": "too many requests", "code": "too_many_requests"},
					})
					return
				}
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
