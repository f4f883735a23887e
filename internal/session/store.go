// Package session caches login tokens between invocations. It is the
// only durable client-side state; everything else is re-fetched from
// the server on startup.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gigspace/gigspace/internal/models"
)

const (
	sessionDirPerm  = 0o700
	sessionFilePerm = 0o600
)

// ErrNotLoggedIn is returned when no session is cached.
var ErrNotLoggedIn = errors.New("not logged in")

// Session is the cached login state.
type Session struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         models.User `json:"user"`
}

// Store persists the session to a single JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a session store backed by the given file path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("session file path required")
	}
	return &Store{path: path}, nil
}

// Load reads the cached session. Returns ErrNotLoggedIn when no session
// file exists.
func (s *Store) Load() (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("read session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if sess.AccessToken == "" {
		return nil, ErrNotLoggedIn
	}
	return &sess, nil
}

// Save writes the session to disk, creating the parent directory if
// needed.
func (s *Store) Save(sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess == nil {
		return fmt.Errorf("nil session")
	}

	if err := os.MkdirAll(filepath.Dir(s.path), sessionDirPerm); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	// Write-then-rename so a crash never leaves a truncated session file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, sessionFilePerm); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// Clear removes the cached session. Clearing an absent session is not
// an error.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}

// Tokens returns the cached access and refresh tokens. Implements the
// API client's token source.
func (s *Store) Tokens() (access, refresh string, err error) {
	sess, err := s.Load()
	if err != nil {
		return "", "", err
	}
	return sess.AccessToken, sess.RefreshToken, nil
}

// ReplaceTokens updates the cached tokens after a refresh, keeping the
// stored user intact.
func (s *Store) ReplaceTokens(access, refresh string) error {
	sess, err := s.Load()
	if err != nil {
		return err
	}
	sess.AccessToken = access
	if refresh != "" {
		sess.RefreshToken = refresh
	}
	return s.Save(sess)
}
