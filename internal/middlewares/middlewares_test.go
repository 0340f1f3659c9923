package middlewares_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avorobev/authd/internal/middlewares"
	"github.com/avorobev/authd/internal/ratelimit"
	"github.com/avorobev/authd/internal/sessions"
)

// stubBinding returns a fixed session or error.
type stubBinding struct {
	session *sessions.Session
	err     error
}

func (b *stubBinding) GetUser(r *http.Request) (*sessions.Session, error) {
	return b.session, b.err
}

func (b *stubBinding) SetUser(w http.ResponseWriter, r *http.Request, userID uuid.UUID, email string) error {
	return nil
}

func (b *stubBinding) Logout(w http.ResponseWriter, r *http.Request) error {
	return nil
}

func TestAuthMiddleware(t *testing.T) {
	session := &sessions.Session{UserID: uuid.New(), Email: "alice@example.com"}

	tests := []struct {
		name       string
		binding    *stubBinding
		wantStatus int
		wantNext   bool
	}{
		{
			name:       "attaches the identity",
			binding:    &stubBinding{session: session},
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:       "no credential",
			binding:    &stubBinding{err: sessions.ErrUnauthenticated},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unreadable credential",
			binding:    &stubBinding{err: sessions.ErrMalformedCredential},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "backend failure",
			binding:    &stubBinding{err: errors.New("redis down")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
				got, ok := sessions.FromContext(r.Context())
				require.True(t, ok)
				assert.Equal(t, session, got)
			})

			handler := middlewares.AuthMiddleware(tt.binding)(next)

			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantNext, nextCalled)
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := ratelimit.New(2, time.Minute)
	handler := middlewares.RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func() int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do())
	assert.Equal(t, http.StatusOK, do())
	// Capacity exhausted: rejected immediately, never queued.
	assert.Equal(t, http.StatusTooManyRequests, do())
}

func TestLoggingMiddleware(t *testing.T) {
	log := zap.NewNop().Sugar()

	handler := middlewares.LoggingMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
