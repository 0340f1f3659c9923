package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/avorobev/authd/internal/sessions"
)

// fakeBinding records SetUser/Logout calls in place of a real session
// strategy.
type fakeBinding struct {
	session   *sessions.Session
	getErr    error
	setErr    error
	logoutErr error

	setCalls    int
	logoutCalls int
	lastUserID  uuid.UUID
	lastEmail   string
}

func (b *fakeBinding) GetUser(r *http.Request) (*sessions.Session, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	if b.session == nil {
		return nil, sessions.ErrUnauthenticated
	}
	return b.session, nil
}

func (b *fakeBinding) SetUser(w http.ResponseWriter, r *http.Request, userID uuid.UUID, email string) error {
	if b.setErr != nil {
		return b.setErr
	}
	b.setCalls++
	b.lastUserID = userID
	b.lastEmail = email
	return nil
}

func (b *fakeBinding) Logout(w http.ResponseWriter, r *http.Request) error {
	if b.logoutErr != nil {
		return b.logoutErr
	}
	b.logoutCalls++
	return nil
}
