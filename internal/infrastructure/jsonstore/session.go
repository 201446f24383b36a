package jsonstore

import (
	"context"
	"sync"

	"valutatrade-hub/internal/application"
)

// Session stores the logged-in username in session.json.
type Session struct {
	mu   sync.Mutex
	path string
}

var _ application.SessionStore = (*Session)(nil)

func NewSession(path string) *Session { return &Session{path: path} }

type sessionRecord struct {
	CurrentUser string `json:"current_user"`
}

func (s *Session) Current(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rec sessionRecord
	if _, err := readJSON(s.path, &rec); err != nil {
		return "", err
	}
	if rec.CurrentUser == "" {
		return "", application.ErrNotFound
	}
	return rec.CurrentUser, nil
}

func (s *Session) Set(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.path, sessionRecord{CurrentUser: username})
}

func (s *Session) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.path, sessionRecord{})
}
