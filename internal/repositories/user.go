package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	"github.com/avorobev/authd/internal/logger"
	"github.com/avorobev/authd/internal/models"
	"github.com/avorobev/authd/internal/repositories/migrations"
)

// Error variables. The store translates driver-level failures into these so
// that no raw driver message leaks past the repository boundary.
var (
	ErrDuplicateUser        = errors.New("email or username already taken")
	ErrResetRequestNotFound = errors.New("password reset request not found or expired")
)

const pgUniqueViolation = "23505"

const userColumns = `id, email, username, password_hash,
		validation_hash, validation_expires,
		reset_pwd_hash, reset_pwd_expires,
		last_request_at, created_at, updated_at`

// UserRepository is the SQL-backed user store. It is the sole authority for
// durable user state; the auth service never touches storage directly.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a UserRepository on top of an already-connected
// database handle.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Init applies the embedded schema migrations. Idempotent: goose keeps a
// version table, so calling this on every process start is safe.
func (r *UserRepository) Init(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, r.db.DB, ".")
}

// RoutineCleanup purges abandoned registrations (pending validation past its
// deadline) and clears expired password-reset tokens without deleting users.
func (r *UserRepository) RoutineCleanup(ctx context.Context) error {
	const purgePending = `
		DELETE FROM users
		WHERE validation_hash IS NOT NULL AND validation_expires < NOW()
	`
	res, err := r.db.ExecContext(ctx, purgePending)
	if err != nil {
		return err
	}
	purged, _ := res.RowsAffected()

	const clearResets = `
		UPDATE users
		SET reset_pwd_hash = NULL, reset_pwd_expires = NULL, updated_at = NOW()
		WHERE reset_pwd_hash IS NOT NULL AND reset_pwd_expires < NOW()
	`
	res, err = r.db.ExecContext(ctx, clearResets)
	if err != nil {
		return err
	}
	cleared, _ := res.RowsAffected()

	logger.Log.Infow("routine cleanup",
		"purged_pending", purged,
		"cleared_resets", cleared,
	)
	return nil
}

// GetLastRequest returns the last cool-down-gated operation timestamp for a
// user, or nil when the user is unknown or has never been stamped.
func (r *UserRepository) GetLastRequest(ctx context.Context, id uuid.UUID) (*time.Time, error) {
	const query = `SELECT last_request_at FROM users WHERE id = $1`

	var ts *time.Time
	err := r.db.GetContext(ctx, &ts, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ts, nil
}

// WriteLastRequest stamps the user's last request time with now().
func (r *UserRepository) WriteLastRequest(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE users SET last_request_at = NOW(), updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// CreateUser inserts a new user row and returns its id. A unique-constraint
// violation on email or username becomes ErrDuplicateUser.
func (r *UserRepository) CreateUser(ctx context.Context, fields models.NewUserFields) (uuid.UUID, error) {
	const query = `
		INSERT INTO users (email, username, password_hash, validation_hash, validation_expires, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id
	`

	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, query,
		fields.Email, fields.Username, fields.PasswordHash,
		fields.ValidationHash, fields.ValidationExpires,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return uuid.Nil, ErrDuplicateUser
		}
		return uuid.Nil, err
	}
	return id, nil
}

// DeleteUser removes a user row. Used as the compensating action when the
// verification mail for a just-registered account could not be sent.
func (r *UserRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM users WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// GetByValidationHash returns the user holding the given validation token,
// or nil when no such token is outstanding.
func (r *UserRepository) GetByValidationHash(ctx context.Context, hash string) (*models.UserDB, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE validation_hash = $1`
	return r.getUser(ctx, query, hash)
}

// ClearValidationHash marks the user's email as verified by clearing the
// validation fields. The token becomes unusable from this point on.
func (r *UserRepository) ClearValidationHash(ctx context.Context, id uuid.UUID) error {
	const query = `
		UPDATE users
		SET validation_hash = NULL, validation_expires = NULL, updated_at = NOW()
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// GetByEmail returns the user with the given email, or nil when absent.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.UserDB, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.getUser(ctx, query, email)
}

// GetByUsername returns the user with the given username. When the input
// contains an "@" and no username matches, it retries as an email lookup so
// users may log in with either identifier.
func (r *UserRepository) GetByUsername(ctx context.Context, usernameOrEmail string) (*models.UserDB, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := r.getUser(ctx, query, usernameOrEmail)
	if err != nil {
		return nil, err
	}
	if user == nil && strings.Contains(usernameOrEmail, "@") {
		return r.GetByEmail(ctx, usernameOrEmail)
	}
	return user, nil
}

// WriteResetRequest stores a fresh password-reset token on the user and
// returns the number of rows affected.
func (r *UserRepository) WriteResetRequest(ctx context.Context, id uuid.UUID, hash string, expires time.Time) (int64, error) {
	const query = `
		UPDATE users
		SET reset_pwd_hash = $2, reset_pwd_expires = $3, updated_at = NOW()
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query, id, hash, expires)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// GetByResetHash resolves a live (non-expired) reset token to a user id.
// Returns uuid.Nil when the token is unknown or expired.
func (r *UserRepository) GetByResetHash(ctx context.Context, hash string) (uuid.UUID, error) {
	const query = `
		SELECT id FROM users
		WHERE reset_pwd_hash = $1
		  AND (reset_pwd_expires IS NULL OR reset_pwd_expires > NOW())
	`

	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, query, hash)
	if errors.Is(err, sql.ErrNoRows) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	return id, nil
}

// WriteNewPassword replaces the password hash in a single atomic update keyed
// by the still-valid reset token, clearing the token in the same statement so
// it cannot be consumed twice. Fails with ErrResetRequestNotFound when the
// token was already used or has expired.
func (r *UserRepository) WriteNewPassword(ctx context.Context, resetHash, newPasswordHash string) error {
	const query = `
		UPDATE users
		SET password_hash = $2, reset_pwd_hash = NULL, reset_pwd_expires = NULL, updated_at = NOW()
		WHERE reset_pwd_hash = $1
		  AND (reset_pwd_expires IS NULL OR reset_pwd_expires > NOW())
	`
	res, err := r.db.ExecContext(ctx, query, resetHash, newPasswordHash)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrResetRequestNotFound
	}
	return nil
}

func (r *UserRepository) getUser(ctx context.Context, query string, args ...any) (*models.UserDB, error) {
	var user models.UserDB
	err := r.db.GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Log.Errorw("user query failed",
			"query", strings.Join(strings.Fields(query), " "),
			"error", err,
		)
		return nil, err
	}
	return &user, nil
}
