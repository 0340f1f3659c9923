package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDB represents a user record in the database.
type UserDB struct {
	UserID            uuid.UUID  `json:"id" db:"id"`                                 // Primary key
	Email             string     `json:"email" db:"email"`                           // Unique email, primary lookup key
	Username          string     `json:"username" db:"username"`                     // Unique username, alternate lookup key
	PasswordHash      string     `json:"-" db:"password_hash"`                       // bcrypt hash, never exposed
	ValidationHash    *string    `json:"-" db:"validation_hash"`                     // Set while email verification is pending
	ValidationExpires *time.Time `json:"-" db:"validation_expires"`                  // Verification token deadline
	ResetPwdHash      *string    `json:"-" db:"reset_pwd_hash"`                      // Set while a password reset is outstanding
	ResetPwdExpires   *time.Time `json:"-" db:"reset_pwd_expires"`                   // Reset token deadline
	LastRequestAt     *time.Time `json:"last_request_at,omitempty" db:"last_request_at"` // Last cool-down-gated operation
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// PendingValidation reports whether the account still awaits email verification.
// A pending user is not permitted to log in.
func (u *UserDB) PendingValidation() bool {
	return u.ValidationHash != nil
}

// NewUserFields carries everything the store needs to insert a user row.
type NewUserFields struct {
	Email             string
	Username          string
	PasswordHash      string
	ValidationHash    *string
	ValidationExpires *time.Time
}
