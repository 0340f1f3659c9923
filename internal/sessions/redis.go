package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionCookie is the name of the cookie carrying the opaque session id.
const SessionCookie = "authd_session"

const keyPrefix = "session:"

// Store is the key-value backend holding server-side session records.
// Get returns ("", nil) when the key is absent.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

// RedisStore implements Store on a Redis client.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore wraps an already-connected Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return val, err
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// RedisBinding is the cookie/session strategy: the cookie holds only an
// opaque uuid, the identity lives server-side in the Store and dies with it.
type RedisBinding struct {
	store Store
	ttl   time.Duration
}

// NewRedisBinding creates a cookie-session binding over the given store.
func NewRedisBinding(store Store, ttl time.Duration) *RedisBinding {
	return &RedisBinding{store: store, ttl: ttl}
}

func (b *RedisBinding) GetUser(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(SessionCookie)
	if err != nil || cookie.Value == "" {
		return nil, ErrUnauthenticated
	}

	raw, err := b.store.Get(r.Context(), keyPrefix+cookie.Value)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, ErrUnauthenticated
	}

	var s Session
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, ErrMalformedCredential
	}
	return &s, nil
}

func (b *RedisBinding) SetUser(w http.ResponseWriter, r *http.Request, userID uuid.UUID, email string) error {
	raw, err := json.Marshal(Session{UserID: userID, Email: email})
	if err != nil {
		return err
	}

	sessionID := uuid.New().String()
	if err := b.store.Set(r.Context(), keyPrefix+sessionID, string(raw), b.ttl); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(b.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Logout destroys the session server-side and clears the cookie.
func (b *RedisBinding) Logout(w http.ResponseWriter, r *http.Request) error {
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		if err := b.store.Del(r.Context(), keyPrefix+cookie.Value); err != nil {
			return err
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
