package jsonstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"
)

// Users persists accounts in users.json. IDs are assigned sequentially
// from the highest existing ID, matching the original file layout.
type Users struct {
	mu   sync.Mutex
	path string
}

var _ application.UserRepo = (*Users)(nil)

func NewUsers(path string) *Users { return &Users{path: path} }

type userRecord struct {
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"hashed_password"`
	RegisteredAt time.Time `json:"registration_date"`
}

func (s *Users) load() ([]userRecord, error) {
	var records []userRecord
	if _, err := readJSON(s.path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Users) Create(_ context.Context, u domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return domain.User{}, err
	}
	var maxID int64
	for _, r := range records {
		if strings.EqualFold(r.Username, u.Username) {
			return domain.User{}, application.ErrUserExists
		}
		if r.UserID > maxID {
			maxID = r.UserID
		}
	}
	u.ID = maxID + 1
	records = append(records, userRecord{
		UserID:       u.ID,
		Username:     u.Username,
		PasswordHash: u.PasswordHash,
		RegisteredAt: u.RegisteredAt.UTC(),
	})
	if err := writeAtomic(s.path, records); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func (s *Users) GetByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return domain.User{}, err
	}
	for _, r := range records {
		if strings.EqualFold(r.Username, strings.TrimSpace(username)) {
			return domain.User{
				ID:           r.UserID,
				Username:     r.Username,
				PasswordHash: r.PasswordHash,
				RegisteredAt: r.RegisteredAt,
			}, nil
		}
	}
	return domain.User{}, application.ErrNotFound
}
