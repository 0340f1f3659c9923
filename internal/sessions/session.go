// Package sessions turns an authenticated identity into a per-request
// credential and back. Two interchangeable strategies exist: a server-side
// session keyed by an opaque cookie (RedisBinding) and a signed, stateless
// token (TokenBinding). Handlers are written against Binding, not either
// implementation.
package sessions

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
)

// Error variables. ErrUnauthenticated means no credential was presented;
// ErrMalformedCredential means one was presented but could not be read.
// Both map to 401, but the distinction matters for logging.
var (
	ErrUnauthenticated     = errors.New("not authenticated")
	ErrMalformedCredential = errors.New("malformed credential")
)

// Session is the identity recovered from a request credential.
type Session struct {
	UserID uuid.UUID `json:"id"`
	Email  string    `json:"email"`
}

// Binding resolves request credentials to identities and back.
type Binding interface {
	// GetUser recovers the identity attached to the request, or
	// ErrUnauthenticated / ErrMalformedCredential.
	GetUser(r *http.Request) (*Session, error)
	// SetUser attaches a fresh credential for the identity to the response.
	SetUser(w http.ResponseWriter, r *http.Request, userID uuid.UUID, email string) error
	// Logout invalidates the request's credential.
	Logout(w http.ResponseWriter, r *http.Request) error
}

type ctxKey struct{}

// WithSession returns a context carrying the session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session attached by the auth middleware, if any.
func FromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*Session)
	return s, ok
}
