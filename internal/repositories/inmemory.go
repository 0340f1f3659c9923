package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/avorobev/authd/internal/models"
)

// InMemoryUserRepository is a map-backed user store with the same contract as
// UserRepository. It backs tests and embedded deployments that have no
// database at hand.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*models.UserDB
}

// NewInMemoryUserRepository creates an empty in-memory store.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[uuid.UUID]*models.UserDB)}
}

// Init is a no-op: there is no schema to create.
func (r *InMemoryUserRepository) Init(ctx context.Context) error {
	return nil
}

// RoutineCleanup applies the same expiry rules as the SQL store.
func (r *InMemoryUserRepository) RoutineCleanup(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for id, u := range r.users {
		if u.ValidationHash != nil && u.ValidationExpires != nil && u.ValidationExpires.Before(now) {
			delete(r.users, id)
			continue
		}
		if u.ResetPwdHash != nil && u.ResetPwdExpires != nil && u.ResetPwdExpires.Before(now) {
			u.ResetPwdHash = nil
			u.ResetPwdExpires = nil
		}
	}
	return nil
}

func (r *InMemoryUserRepository) GetLastRequest(ctx context.Context, id uuid.UUID) (*time.Time, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok || u.LastRequestAt == nil {
		return nil, nil
	}
	ts := *u.LastRequestAt
	return &ts, nil
}

func (r *InMemoryUserRepository) WriteLastRequest(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		now := time.Now()
		u.LastRequestAt = &now
	}
	return nil
}

func (r *InMemoryUserRepository) CreateUser(ctx context.Context, fields models.NewUserFields) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == fields.Email || (fields.Username != "" && u.Username == fields.Username) {
			return uuid.Nil, ErrDuplicateUser
		}
	}

	now := time.Now()
	user := &models.UserDB{
		UserID:            uuid.New(),
		Email:             fields.Email,
		Username:          fields.Username,
		PasswordHash:      fields.PasswordHash,
		ValidationHash:    cloneString(fields.ValidationHash),
		ValidationExpires: cloneTime(fields.ValidationExpires),
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	r.users[user.UserID] = user
	return user.UserID, nil
}

func (r *InMemoryUserRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *InMemoryUserRepository) GetByValidationHash(ctx context.Context, hash string) (*models.UserDB, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.ValidationHash != nil && *u.ValidationHash == hash {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *InMemoryUserRepository) ClearValidationHash(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		u.ValidationHash = nil
		u.ValidationExpires = nil
		u.UpdatedAt = time.Now()
	}
	return nil
}

func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*models.UserDB, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, nil
}

func (r *InMemoryUserRepository) GetByUsername(ctx context.Context, usernameOrEmail string) (*models.UserDB, error) {
	r.mu.RLock()
	for _, u := range r.users {
		if u.Username == usernameOrEmail {
			r.mu.RUnlock()
			return cloneUser(u), nil
		}
	}
	r.mu.RUnlock()

	if strings.Contains(usernameOrEmail, "@") {
		return r.GetByEmail(ctx, usernameOrEmail)
	}
	return nil, nil
}

func (r *InMemoryUserRepository) WriteResetRequest(ctx context.Context, id uuid.UUID, hash string, expires time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return 0, nil
	}
	u.ResetPwdHash = &hash
	u.ResetPwdExpires = &expires
	u.UpdatedAt = time.Now()
	return 1, nil
}

func (r *InMemoryUserRepository) GetByResetHash(ctx context.Context, hash string) (uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := time.Now()
	for id, u := range r.users {
		if u.ResetPwdHash != nil && *u.ResetPwdHash == hash {
			if u.ResetPwdExpires != nil && u.ResetPwdExpires.Before(now) {
				return uuid.Nil, nil
			}
			return id, nil
		}
	}
	return uuid.Nil, nil
}

func (r *InMemoryUserRepository) WriteNewPassword(ctx context.Context, resetHash, newPasswordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, u := range r.users {
		if u.ResetPwdHash != nil && *u.ResetPwdHash == resetHash {
			if u.ResetPwdExpires != nil && u.ResetPwdExpires.Before(now) {
				return ErrResetRequestNotFound
			}
			u.PasswordHash = newPasswordHash
			u.ResetPwdHash = nil
			u.ResetPwdExpires = nil
			u.UpdatedAt = now
			return nil
		}
	}
	return ErrResetRequestNotFound
}

func cloneUser(u *models.UserDB) *models.UserDB {
	c := *u
	c.ValidationHash = cloneString(u.ValidationHash)
	c.ValidationExpires = cloneTime(u.ValidationExpires)
	c.ResetPwdHash = cloneString(u.ResetPwdHash)
	c.ResetPwdExpires = cloneTime(u.ResetPwdExpires)
	c.LastRequestAt = cloneTime(u.LastRequestAt)
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
