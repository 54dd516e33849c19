// Package session owns the authenticated session: the bearer token and
// the user profile. State is persisted to ~/.studyshelf/session.json and
// revalidated against the backend once at startup. The store is the
// single writer of session state; everything else reads.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/studyshelf/studyshelf/internal/api"
	"github.com/studyshelf/studyshelf/internal/config"
	"github.com/studyshelf/studyshelf/internal/logger"
	"github.com/studyshelf/studyshelf/internal/model"
)

// Authenticator is the backend surface the store needs.
type Authenticator interface {
	Login(ctx context.Context, identifier, password string) (*api.AuthData, error)
	Me(ctx context.Context, token string) (*model.UserProfile, error)
	UpdateProfile(ctx context.Context, token string, profile model.UserProfile) (*model.UserProfile, error)
}

// LoginResult tells the caller whether login succeeded and, if not,
// what to show inline.
type LoginResult struct {
	Success bool
	Message string
}

// persisted is the on-disk session file layout.
type persisted struct {
	Token string             `json:"token,omitempty"`
	User  *model.UserProfile `json:"user,omitempty"`
}

// Store holds the live session.
type Store struct {
	auth Authenticator
	path string

	mu            sync.Mutex
	token         string
	user          *model.UserProfile
	authenticated bool
	loading       bool
}

// DefaultPath returns ~/.studyshelf/session.json
func DefaultPath() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

// NewStore creates a session store, loading any persisted session.
// The loaded session is not trusted until Restore revalidates it.
func NewStore(auth Authenticator, path string) *Store {
	s := &Store{auth: auth, path: path}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		return
	}
	s.token = p.Token
	s.user = p.User
}

func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(persisted{Token: s.token, User: s.user}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0600)
}

func (s *Store) clearLocked() {
	s.token = ""
	s.user = nil
	s.authenticated = false
	os.Remove(s.path)
}

// Restore revalidates a persisted token against the backend. Called
// once at startup. A backend rejection clears the persisted session; a
// network failure falls back to the cached profile so the user is not
// logged out just because they are offline.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	if token == "" {
		s.loading = false
		s.mu.Unlock()
		return
	}
	s.loading = true
	s.mu.Unlock()

	user, err := s.auth.Me(ctx, token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	switch {
	case err == nil:
		s.user = user
		s.authenticated = true
		if saveErr := s.save(); saveErr != nil {
			logger.Warn("Failed to persist refreshed session", logger.F("error", saveErr))
		}

	case isRejected(err):
		// Token is no longer valid on the server
		logger.Info("Stored token rejected, clearing session")
		s.clearLocked()

	default:
		// Network trouble: keep the cached profile if we have one
		if s.user != nil {
			logger.Warn("Session revalidation unreachable, using cached profile", logger.F("error", err))
			s.authenticated = true
		} else {
			s.clearLocked()
		}
	}
}

// Login authenticates and, on success, persists the new session.
// Failure never mutates state.
func (s *Store) Login(ctx context.Context, identifier, password string) LoginResult {
	data, err := s.auth.Login(ctx, identifier, password)
	if err != nil {
		msg := "Could not reach the server. Please try again."
		var apiErr *api.Error
		if errors.As(err, &apiErr) {
			msg = apiErr.Message
			if msg == "" {
				msg = "Invalid phone number or password"
			}
		}
		logger.Info("Login failed", logger.F("error", err))
		return LoginResult{Success: false, Message: msg}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = data.Token
	user := data.User
	s.user = &user
	s.authenticated = true
	if err := s.save(); err != nil {
		logger.Warn("Failed to persist session", logger.F("error", err))
	}
	logger.Info("Logged in", logger.F("user", user.Phone))
	return LoginResult{Success: true}
}

// Register marks the session authenticated with a freshly created
// account. The registration call itself has already succeeded.
func (s *Store) Register(user model.UserProfile, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = &user
	s.authenticated = true
	if err := s.save(); err != nil {
		logger.Warn("Failed to persist session", logger.F("error", err))
	}
}

// UpdateProfile replaces the profile on the backend and locally.
func (s *Store) UpdateProfile(ctx context.Context, profile model.UserProfile) error {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return fmt.Errorf("not logged in")
	}

	updated, err := s.auth.UpdateProfile(ctx, token, profile)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = updated
	if err := s.save(); err != nil {
		logger.Warn("Failed to persist session", logger.F("error", err))
	}
	return nil
}

// Logout clears the session and its persisted file.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	logger.Info("Logged out")
}

// IsAuthenticated reports whether a user is logged in.
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// IsLoading is true only during the one-shot startup revalidation.
func (s *Store) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// User returns a copy of the profile, or nil when logged out.
func (s *Store) User() *model.UserProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// isRejected distinguishes a backend "no" from a transport failure.
func isRejected(err error) bool {
	var apiErr *api.Error
	return errors.As(err, &apiErr)
}
