package session

import (
	"context"
	"errors"
	"sync"
)

var ErrNotLoggedIn = errors.New("not logged in")

// User is the signed-in employee as the wizard sees it.
type User struct {
	ID      string `json:"id"`
	EmpCode string `json:"emp_code"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Branch  string `json:"branch"`
	Role    string `json:"role"`
}

// Session is the authenticated context the wizard is constructed with.
type Session interface {
	CurrentUser() *User
	Token() string
	Login(ctx context.Context, empCode, password string) (*User, error)
	Logout(ctx context.Context) error
}

// Authenticator exchanges credentials for a user and bearer token.
type Authenticator interface {
	Authenticate(ctx context.Context, empCode, password string) (*User, string, error)
}

// Local keeps the session in memory. The API builds one per request user
// with Restore; the CLI builds one around a remote authenticator.
type Local struct {
	mu    sync.RWMutex
	auth  Authenticator
	user  *User
	token string
}

func NewLocal(auth Authenticator) *Local {
	return &Local{auth: auth}
}

// Restore installs an already-authenticated user.
func (s *Local) Restore(user *User, token string) *Local {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
	s.token = token
	return s
}

func (s *Local) CurrentUser() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Local) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Local) Login(ctx context.Context, empCode, password string) (*User, error) {
	if s.auth == nil {
		return nil, errors.New("no authenticator configured")
	}
	user, token, err := s.auth.Authenticate(ctx, empCode, password)
	if err != nil {
		return nil, err
	}
	s.Restore(user, token)
	return s.CurrentUser(), nil
}

func (s *Local) Logout(context.Context) error {
	s.Restore(nil, "")
	return nil
}
