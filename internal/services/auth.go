package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avorobev/authd/internal/events"
	"github.com/avorobev/authd/internal/logger"
	"github.com/avorobev/authd/internal/mailer"
	"github.com/avorobev/authd/internal/models"
	"github.com/avorobev/authd/internal/repositories"
)

// Error variables
var (
	ErrUserAlreadyExists   = errors.New("email or username already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrValidationRequired  = errors.New("email validation required")
	ErrTooManyRequests     = errors.New("too many requests")
	ErrInvalidHash         = errors.New("invalid validation hash")
	ErrUserNotFound        = errors.New("user not found")
	ErrPasswordMismatch    = errors.New("passwords do not match")
	ErrInvalidResetRequest = errors.New("invalid or expired reset request")
)

// ValidationError reports which input fields violated their shape constraints.
// Always a local, synchronous failure, never retried.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "invalid fields: " + strings.Join(e.Fields, ", ")
}

const (
	minPasswordLen = 8
	minUsernameLen = 3

	defaultLoginWait     = 3 * time.Second
	defaultResetWait     = 15 * time.Second
	defaultTokenLifetime = 2 * time.Hour
)

// UserStore is the persistence contract the auth service depends on. The SQL
// and in-memory repositories both satisfy it; swapping storage engines never
// touches this package.
type UserStore interface {
	RoutineCleanup(ctx context.Context) error
	GetLastRequest(ctx context.Context, id uuid.UUID) (*time.Time, error)
	WriteLastRequest(ctx context.Context, id uuid.UUID) error
	CreateUser(ctx context.Context, fields models.NewUserFields) (uuid.UUID, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
	GetByValidationHash(ctx context.Context, hash string) (*models.UserDB, error)
	ClearValidationHash(ctx context.Context, id uuid.UUID) error
	GetByEmail(ctx context.Context, email string) (*models.UserDB, error)
	GetByUsername(ctx context.Context, usernameOrEmail string) (*models.UserDB, error)
	WriteResetRequest(ctx context.Context, id uuid.UUID, hash string, expires time.Time) (int64, error)
	GetByResetHash(ctx context.Context, hash string) (uuid.UUID, error)
	WriteNewPassword(ctx context.Context, resetHash, newPasswordHash string) error
}

// Mailer is the mail-sending capability.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Publisher emits account lifecycle events. May be nil.
type Publisher interface {
	Publish(ctx context.Context, eventType string, userID uuid.UUID, email string)
}

// ValidatedUser is returned by ValidateHash.
type ValidatedUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// AuthService orchestrates registration, credential checking, the
// email-verification flow, the password-reset flow, and per-identity
// cool-downs. It never touches storage or mail transport directly.
type AuthService struct {
	store     UserStore
	mail      Mailer
	events    Publisher
	siteRoot  string
	loginWait time.Duration
	resetWait time.Duration
	tokenTTL  time.Duration
}

// Opt configures an AuthService.
type Opt func(*AuthService)

// WithSiteRoot sets the base URL used to build verification and reset links.
func WithSiteRoot(root string) Opt {
	return func(s *AuthService) { s.siteRoot = root }
}

// WithLoginWait sets the per-identity cool-down between login attempts.
func WithLoginWait(d time.Duration) Opt {
	return func(s *AuthService) { s.loginWait = d }
}

// WithResetWait sets the per-identity cool-down between reset requests.
func WithResetWait(d time.Duration) Opt {
	return func(s *AuthService) { s.resetWait = d }
}

// WithTokenLifetime sets the validity window of validation and reset tokens.
func WithTokenLifetime(d time.Duration) Opt {
	return func(s *AuthService) { s.tokenTTL = d }
}

// WithPublisher sets the lifecycle event publisher.
func WithPublisher(p Publisher) Opt {
	return func(s *AuthService) { s.events = p }
}

// NewAuthService creates a new AuthService instance.
func NewAuthService(store UserStore, mail Mailer, opts ...Opt) *AuthService {
	s := &AuthService{
		store:     store,
		mail:      mail,
		siteRoot:  "http://localhost:8080",
		loginWait: defaultLoginWait,
		resetWait: defaultResetWait,
		tokenTTL:  defaultTokenLifetime,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a new account. With askForValidation the account starts
// pending: a verification mail with a single-use token is sent and the user
// cannot log in until the token is redeemed. If that mail cannot be sent the
// just-inserted row is deleted again (compensating action, not a transaction)
// so no unverifiable account is left behind.
func (svc *AuthService) Register(ctx context.Context, username, email, password string, askForValidation bool) (uuid.UUID, error) {
	if username == "" {
		username = email
	}
	if err := validateRegistration(username, email, password); err != nil {
		return uuid.Nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Errorw("failed to hash password", "err", err)
		return uuid.Nil, err
	}

	fields := models.NewUserFields{
		Email:        email,
		Username:     username,
		PasswordHash: string(hashed),
	}

	var token string
	if askForValidation {
		token = uuid.NewString()
		expires := time.Now().Add(svc.tokenTTL)
		fields.ValidationHash = &token
		fields.ValidationExpires = &expires
	}

	id, err := svc.store.CreateUser(ctx, fields)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateUser) {
			return uuid.Nil, ErrUserAlreadyExists
		}
		logger.Log.Errorw("failed to create user", "err", err)
		return uuid.Nil, err
	}

	if askForValidation {
		subject, html := mailer.ValidationMail(svc.siteRoot, token)
		if err := svc.mail.Send(ctx, email, subject, html); err != nil {
			logger.Log.Errorw("verification mail failed, rolling back registration", "id", id, "err", err)
			if delErr := svc.store.DeleteUser(ctx, id); delErr != nil {
				logger.Log.Errorw("compensating delete failed", "id", id, "err", delErr)
			}
			return uuid.Nil, fmt.Errorf("send verification mail: %w", err)
		}
	}

	if svc.events != nil {
		svc.events.Publish(ctx, events.TypeUserRegistered, id, email)
	}

	return id, nil
}

// ValidateHash redeems an email-verification token. Single use: the first
// call clears the token, any repeat fails with ErrInvalidHash.
func (svc *AuthService) ValidateHash(ctx context.Context, hash string) (*ValidatedUser, error) {
	user, err := svc.store.GetByValidationHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidHash
	}

	if err := svc.store.ClearValidationHash(ctx, user.UserID); err != nil {
		return nil, err
	}

	if svc.events != nil {
		svc.events.Publish(ctx, events.TypeUserValidated, user.UserID, user.Email)
	}

	return &ValidatedUser{ID: user.UserID, Email: user.Email}, nil
}

// Login checks credentials for a username or email. The per-identity
// cool-down is enforced before any password comparison so a throttled caller
// learns nothing from response timing. A pending (unverified) account fails
// with ErrValidationRequired, which the HTTP layer presents identically to
// bad credentials.
func (svc *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (*models.UserDB, error) {
	user, err := svc.store.GetByUsername(ctx, usernameOrEmail)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := svc.checkRequestCap(ctx, user.UserID, svc.loginWait); err != nil {
		return nil, err
	}

	if user.PendingValidation() {
		return nil, ErrValidationRequired
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// RequestPasswordReset issues a reset token for the account behind the email
// and mails the reset link. A failed mail send fails the whole operation; the
// already-written token does no harm and simply expires.
func (svc *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := svc.store.GetByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}

	if err := svc.checkRequestCap(ctx, user.UserID, svc.resetWait); err != nil {
		return "", err
	}

	token := uuid.NewString()
	expires := time.Now().Add(svc.tokenTTL)
	affected, err := svc.store.WriteResetRequest(ctx, user.UserID, token, expires)
	if err != nil {
		return "", err
	}
	if affected == 0 {
		return "", ErrUserNotFound
	}

	subject, html := mailer.ResetMail(svc.siteRoot, token)
	if err := svc.mail.Send(ctx, email, subject, html); err != nil {
		logger.Log.Errorw("reset mail failed", "id", user.UserID, "err", err)
		return "", fmt.Errorf("send reset mail: %w", err)
	}

	return token, nil
}

// FindResetRequest reports whether a live reset request exists for the id.
func (svc *AuthService) FindResetRequest(ctx context.Context, requestID string) (bool, error) {
	id, err := svc.store.GetByResetHash(ctx, requestID)
	if err != nil {
		return false, err
	}
	return id != uuid.Nil, nil
}

// PerformReset completes a password reset. The store update is atomic and
// keyed by the still-valid token, so concurrent attempts cannot consume the
// same request twice.
func (svc *AuthService) PerformReset(ctx context.Context, requestID, newPwd1, newPwd2 string) error {
	if newPwd1 != newPwd2 {
		return ErrPasswordMismatch
	}
	if len(newPwd1) < minPasswordLen {
		return &ValidationError{Fields: []string{"password"}}
	}

	id, err := svc.store.GetByResetHash(ctx, requestID)
	if err != nil {
		return err
	}
	if id == uuid.Nil {
		return ErrInvalidResetRequest
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPwd1), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := svc.store.WriteNewPassword(ctx, requestID, string(hashed)); err != nil {
		if errors.Is(err, repositories.ErrResetRequestNotFound) {
			// Consumed or expired between lookup and update.
			return ErrInvalidResetRequest
		}
		return err
	}

	if svc.events != nil {
		svc.events.Publish(ctx, events.TypePasswordChanged, id, "")
	}

	return nil
}

// RoutineCleanup delegates to the store. Scheduling is the caller's job.
func (svc *AuthService) RoutineCleanup(ctx context.Context) error {
	return svc.store.RoutineCleanup(ctx)
}

// checkRequestCap enforces the per-identity cool-down: the identity must wait
// out the window since its last gated operation. A passing check stamps a new
// last-request time.
func (svc *AuthService) checkRequestCap(ctx context.Context, id uuid.UUID, wait time.Duration) error {
	last, err := svc.store.GetLastRequest(ctx, id)
	if err != nil {
		return err
	}
	if last != nil && time.Since(*last) < wait {
		return ErrTooManyRequests
	}
	return svc.store.WriteLastRequest(ctx, id)
}

func validateRegistration(username, email, password string) error {
	var bad []string
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		bad = append(bad, "email")
	}
	if len(password) < minPasswordLen {
		bad = append(bad, "password")
	}
	if len(username) < minUsernameLen {
		bad = append(bad, "username")
	}
	if len(bad) > 0 {
		return &ValidationError{Fields: bad}
	}
	return nil
}
