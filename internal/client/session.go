package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"

	"staybnb/internal/db"
)

type Status string

const (
	StatusLoading       Status = "loading"
	StatusAuthenticated Status = "authenticated"
	StatusAnonymous     Status = "anonymous"
)

type storedSession struct {
	Token string   `json:"token"`
	User  *db.User `json:"user"`
}

// FileStore keeps the auth token and the user blob in one JSON file.
type FileStore struct {
	Path string
}

// Load returns an empty session when the file does not exist.
func (f *FileStore) Load() (storedSession, error) {
	var s storedSession
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading session file: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return storedSession{}, fmt.Errorf("parsing session file: %w", err)
	}
	return s, nil
}

func (f *FileStore) Save(s storedSession) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}
	if err := os.WriteFile(f.Path, data, 0o600); err != nil {
		return fmt.Errorf("writing session file: %w", err)
	}
	return nil
}

func (f *FileStore) Clear() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing session file: %w", err)
	}
	return nil
}

// Session is the authenticated user, the token and where the two are persisted.
type Session struct {
	mu     sync.RWMutex
	user   *db.User
	token  string
	status Status
	store  *FileStore
}

func NewSession(store *FileStore) *Session {
	return &Session{store: store, status: StatusLoading}
}

// Init restores the persisted session and checks it with verify. A rejected
// token is discarded. Any failure leaves the session anonymous.
func (s *Session) Init(ctx context.Context, verify func(ctx context.Context) (*db.User, error)) error {
	stored, err := s.store.Load()
	if err != nil {
		log.WithError(err).Warn("discarding unreadable session")
		s.Teardown()
		return nil
	}
	if stored.Token == "" {
		s.Teardown()
		return nil
	}

	s.mu.Lock()
	s.token, s.user, s.status = stored.Token, stored.User, StatusLoading
	s.mu.Unlock()

	user, err := verify(ctx)
	if errors.Is(err, ErrUnauthorized) {
		s.Teardown()
		return nil
	}
	if err != nil {
		// The stored token is kept.
		s.mu.Lock()
		s.status = StatusAnonymous
		s.mu.Unlock()
		return fmt.Errorf("verifying session: %w", err)
	}
	return s.SetUser(user)
}

// Start stores a freshly issued token.
func (s *Session) Start(token string, user *db.User) error {
	s.mu.Lock()
	s.token, s.user, s.status = token, user, StatusAuthenticated
	s.mu.Unlock()
	return s.store.Save(storedSession{Token: token, User: user})
}

func (s *Session) SetUser(user *db.User) error {
	s.mu.Lock()
	s.user, s.status = user, StatusAuthenticated
	stored := storedSession{Token: s.token, User: user}
	s.mu.Unlock()
	return s.store.Save(stored)
}

// Teardown forgets the token and user in memory and on disk.
func (s *Session) Teardown() {
	s.mu.Lock()
	s.token, s.user, s.status = "", nil, StatusAnonymous
	s.mu.Unlock()
	if err := s.store.Clear(); err != nil {
		log.WithError(err).Warn("clearing session")
	}
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy so callers cannot mutate the session.
func (s *Session) User() *db.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// setHost flips the in-memory host flag and returns the previous value.
func (s *Session) setHost(isHost bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return false
	}
	prev := s.user.IsHost
	s.user.IsHost = isHost
	return prev
}
