package domain

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 4

var (
	ErrEmptyUsername = errors.New("username must not be empty")
	ErrWeakPassword  = errors.New("password must be at least 4 characters")
)

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	RegisteredAt time.Time
}

// NewUser hashes the raw password with bcrypt. The ID is assigned by the
// user repository on create.
func NewUser(username, password string, registeredAt time.Time) (User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return User{}, ErrEmptyUsername
	}
	if len(password) < minPasswordLen {
		return User{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	return User{Username: username, PasswordHash: string(hash), RegisteredAt: registeredAt.UTC()}, nil
}

func (u User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}
