package sessions_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avorobev/authd/internal/jwt"
	"github.com/avorobev/authd/internal/sessions"
)

// memStore keeps session records in a map, standing in for Redis.
type memStore struct {
	data map[string]string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.data[key] = value
	return nil
}

func (s *memStore) Get(ctx context.Context, key string) (string, error) {
	return s.data[key], nil
}

func (s *memStore) Del(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func cookieByName(t *testing.T, rec *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not set", name)
	return nil
}

func TestRedisBinding_RoundTrip(t *testing.T) {
	store := newMemStore()
	binding := sessions.NewRedisBinding(store, time.Hour)
	userID := uuid.New()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	require.NoError(t, binding.SetUser(rec, req, userID, "alice@example.com"))

	cookie := cookieByName(t, rec, sessions.SessionCookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, 3600, cookie.MaxAge)
	// The cookie carries an opaque id, never the identity itself.
	assert.NotContains(t, cookie.Value, "alice")
	assert.Len(t, store.data, 1)

	next := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	next.AddCookie(&http.Cookie{Name: sessions.SessionCookie, Value: cookie.Value})

	session, err := binding.GetUser(next)
	require.NoError(t, err)
	assert.Equal(t, userID, session.UserID)
	assert.Equal(t, "alice@example.com", session.Email)
}

func TestRedisBinding_Unauthenticated(t *testing.T) {
	binding := sessions.NewRedisBinding(newMemStore(), time.Hour)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	_, err := binding.GetUser(req)
	assert.ErrorIs(t, err, sessions.ErrUnauthenticated)

	// A cookie pointing at a dead session is the same as no cookie.
	req.AddCookie(&http.Cookie{Name: sessions.SessionCookie, Value: uuid.NewString()})
	_, err = binding.GetUser(req)
	assert.ErrorIs(t, err, sessions.ErrUnauthenticated)
}

func TestRedisBinding_MalformedRecord(t *testing.T) {
	store := newMemStore()
	binding := sessions.NewRedisBinding(store, time.Hour)

	store.data["session:broken"] = "{not json"
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: sessions.SessionCookie, Value: "broken"})

	_, err := binding.GetUser(req)
	assert.ErrorIs(t, err, sessions.ErrMalformedCredential)
}

func TestRedisBinding_Logout(t *testing.T) {
	store := newMemStore()
	binding := sessions.NewRedisBinding(store, time.Hour)
	userID := uuid.New()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	require.NoError(t, binding.SetUser(rec, req, userID, "alice@example.com"))
	cookie := cookieByName(t, rec, sessions.SessionCookie)

	out := httptest.NewRecorder()
	logoutReq := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	logoutReq.AddCookie(&http.Cookie{Name: sessions.SessionCookie, Value: cookie.Value})
	require.NoError(t, binding.Logout(out, logoutReq))

	// Server-side record destroyed, cookie expired.
	assert.Empty(t, store.data)
	cleared := cookieByName(t, out, sessions.SessionCookie)
	assert.Equal(t, -1, cleared.MaxAge)

	next := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	next.AddCookie(&http.Cookie{Name: sessions.SessionCookie, Value: cookie.Value})
	_, err := binding.GetUser(next)
	assert.ErrorIs(t, err, sessions.ErrUnauthenticated)
}

func TestTokenBinding_RoundTrip(t *testing.T) {
	codec := jwt.New(jwt.WithSecretKey("test_secret"), jwt.WithExpiration(time.Hour))
	binding := sessions.NewTokenBinding(codec, time.Hour)
	userID := uuid.New()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	require.NoError(t, binding.SetUser(rec, req, userID, "alice@example.com"))

	cookie := cookieByName(t, rec, sessions.TokenCookie)
	assert.True(t, cookie.HttpOnly)

	t.Run("via cookie", func(t *testing.T) {
		next := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		next.AddCookie(&http.Cookie{Name: sessions.TokenCookie, Value: cookie.Value})

		session, err := binding.GetUser(next)
		require.NoError(t, err)
		assert.Equal(t, userID, session.UserID)
		assert.Equal(t, "alice@example.com", session.Email)
	})

	t.Run("via bearer header", func(t *testing.T) {
		next := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		next.Header.Set("Authorization", "Bearer "+cookie.Value)

		session, err := binding.GetUser(next)
		require.NoError(t, err)
		assert.Equal(t, userID, session.UserID)
	})
}

func TestTokenBinding_Errors(t *testing.T) {
	codec := jwt.New(jwt.WithSecretKey("test_secret"))
	binding := sessions.NewTokenBinding(codec, time.Hour)

	t.Run("no credential", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		_, err := binding.GetUser(req)
		assert.ErrorIs(t, err, sessions.ErrUnauthenticated)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		_, err := binding.GetUser(req)
		assert.ErrorIs(t, err, sessions.ErrMalformedCredential)
	})

	t.Run("token signed with another key", func(t *testing.T) {
		other := jwt.New(jwt.WithSecretKey("other_secret"))
		token, err := other.Generate(context.Background(), uuid.New(), "eve@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		_, err = binding.GetUser(req)
		assert.ErrorIs(t, err, sessions.ErrMalformedCredential)
	})

	t.Run("expired token", func(t *testing.T) {
		stale := jwt.New(jwt.WithSecretKey("test_secret"), jwt.WithExpiration(-time.Minute))
		token, err := stale.Generate(context.Background(), uuid.New(), "alice@example.com")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		_, err = binding.GetUser(req)
		assert.ErrorIs(t, err, sessions.ErrMalformedCredential)
	})
}

func TestTokenBinding_Logout(t *testing.T) {
	codec := jwt.New(jwt.WithSecretKey("test_secret"))
	binding := sessions.NewTokenBinding(codec, time.Hour)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	require.NoError(t, binding.Logout(rec, req))

	cleared := cookieByName(t, rec, sessions.TokenCookie)
	assert.Equal(t, -1, cleared.MaxAge)
	assert.Empty(t, cleared.Value)
}

func TestSessionContext(t *testing.T) {
	s := &sessions.Session{UserID: uuid.New(), Email: "alice@example.com"}
	ctx := sessions.WithSession(context.Background(), s)

	got, ok := sessions.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, s, got)

	_, ok = sessions.FromContext(context.Background())
	assert.False(t, ok)
}
