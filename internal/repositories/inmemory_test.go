package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avorobev/authd/internal/models"
	"github.com/avorobev/authd/internal/repositories"
)

func TestInMemoryUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewInMemoryUserRepository()
	require.NoError(t, repo.Init(ctx))

	id, err := repo.CreateUser(ctx, newUserFields("alice@example.com", "alice"))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, id)

	_, err = repo.CreateUser(ctx, newUserFields("alice@example.com", "other"))
	assert.ErrorIs(t, err, repositories.ErrDuplicateUser)
	_, err = repo.CreateUser(ctx, newUserFields("other@example.com", "alice"))
	assert.ErrorIs(t, err, repositories.ErrDuplicateUser)

	user, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, id, user.UserID)

	user, err = repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, user)

	// Email input falls back to the email lookup.
	user, err = repo.GetByUsername(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)

	user, err = repo.GetByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, user)

	require.NoError(t, repo.DeleteUser(ctx, id))
	user, err = repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestInMemoryUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewInMemoryUserRepository()

	_, err := repo.CreateUser(ctx, newUserFields("alice@example.com", "alice"))
	require.NoError(t, err)

	user, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	user.PasswordHash = "tampered"

	again, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", again.PasswordHash)
}

func TestInMemoryUserRepository_ValidationLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewInMemoryUserRepository()

	token := "validation-token"
	expires := time.Now().Add(time.Hour)
	fields := newUserFields("alice@example.com", "alice")
	fields.ValidationHash = &token
	fields.ValidationExpires = &expires

	id, err := repo.CreateUser(ctx, fields)
	require.NoError(t, err)

	user, err := repo.GetByValidationHash(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.True(t, user.PendingValidation())

	require.NoError(t, repo.ClearValidationHash(ctx, id))

	user, err = repo.GetByValidationHash(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, user.PendingValidation())
}

func TestInMemoryUserRepository_ResetLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewInMemoryUserRepository()

	id, err := repo.CreateUser(ctx, newUserFields("alice@example.com", "alice"))
	require.NoError(t, err)

	affected, err := repo.WriteResetRequest(ctx, uuid.New(), "token", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, affected)

	affected, err = repo.WriteResetRequest(ctx, id, "token", time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	got, err := repo.GetByResetHash(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, id, got)

	require.NoError(t, repo.WriteNewPassword(ctx, "token", "$2a$10$newhash"))

	// The token was consumed by the update.
	got, err = repo.GetByResetHash(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got)
	err = repo.WriteNewPassword(ctx, "token", "$2a$10$again")
	assert.ErrorIs(t, err, repositories.ErrResetRequestNotFound)

	user, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$newhash", user.PasswordHash)
}

func TestInMemoryUserRepository_ExpiredReset(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewInMemoryUserRepository()

	id, err := repo.CreateUser(ctx, newUserFields("alice@example.com", "alice"))
	require.NoError(t, err)

	_, err = repo.WriteResetRequest(ctx, id, "token", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	got, err := repo.GetByResetHash(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, uuid.Nil, got)

	err = repo.WriteNewPassword(ctx, "token", "$2a$10$newhash")
	assert.ErrorIs(t, err, repositories.ErrResetRequestNotFound)
}

func TestInMemoryUserRepository_RoutineCleanup(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewInMemoryUserRepository()

	staleToken := "stale"
	staleExpiry := time.Now().Add(-time.Minute)
	stale := models.NewUserFields{
		Email:             "stale@example.com",
		Username:          "stale",
		PasswordHash:      "$2a$10$hash",
		ValidationHash:    &staleToken,
		ValidationExpires: &staleExpiry,
	}
	_, err := repo.CreateUser(ctx, stale)
	require.NoError(t, err)

	liveID, err := repo.CreateUser(ctx, newUserFields("live@example.com", "live"))
	require.NoError(t, err)
	_, err = repo.WriteResetRequest(ctx, liveID, "expired-reset", time.Now().Add(-time.Minute))
	require.NoError(t, err)

	require.NoError(t, repo.RoutineCleanup(ctx))

	// Abandoned registrations are purged outright.
	user, err := repo.GetByEmail(ctx, "stale@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	// Validated accounts only lose their stale reset token.
	user, err = repo.GetByEmail(ctx, "live@example.com")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Nil(t, user.ResetPwdHash)
}

func TestInMemoryUserRepository_LastRequest(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewInMemoryUserRepository()

	id, err := repo.CreateUser(ctx, newUserFields("alice@example.com", "alice"))
	require.NoError(t, err)

	last, err := repo.GetLastRequest(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, last)

	require.NoError(t, repo.WriteLastRequest(ctx, id))

	last, err = repo.GetLastRequest(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.WithinDuration(t, time.Now(), *last, time.Second)
}
