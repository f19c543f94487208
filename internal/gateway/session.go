package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sangkips/ecs-receipts/internal/session"
)

type storedSession struct {
	Token string        `json:"token"`
	User  *session.User `json:"user"`
}

// FileSession is a session that survives between CLI runs. The token is
// written to a user-only file.
type FileSession struct {
	path   string
	client *Client

	mu    sync.RWMutex
	token string
	user  *session.User
}

// NewFileSession loads the session at path, if present, and wires the
// client to send its token.
func NewFileSession(path string, client *Client) (*FileSession, error) {
	s := &FileSession{path: path, client: client}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read session: %w", err)
	default:
		var st storedSession
		if err := json.Unmarshal(data, &st); err != nil {
			return nil, fmt.Errorf("failed to parse session %s: %w", path, err)
		}
		s.token, s.user = st.Token, st.User
	}
	client.UseTokens(s)
	return s, nil
}

func (s *FileSession) CurrentUser() *session.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *FileSession) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *FileSession) Login(ctx context.Context, empCode, password string) (*session.User, error) {
	user, token, err := s.client.Authenticate(ctx, empCode, password)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user, s.token = user, token
	s.mu.Unlock()
	if err := s.save(); err != nil {
		return nil, err
	}
	return s.CurrentUser(), nil
}

// Logout tells the server and forgets the local token even if the server
// call fails.
func (s *FileSession) Logout(ctx context.Context) error {
	var remoteErr error
	if s.Token() != "" {
		remoteErr = s.client.Logout(ctx)
	}
	s.mu.Lock()
	s.user, s.token = nil, ""
	s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	return remoteErr
}

func (s *FileSession) save() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(storedSession{Token: s.token, User: s.user}, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	return nil
}
