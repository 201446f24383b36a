package application

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"valutatrade-hub/internal/domain"
)

// Register creates a user and seeds an empty portfolio for them.
func (s *Service) Register(ctx context.Context, username, password string) (domain.User, error) {
	u, err := domain.NewUser(username, password, s.clock.Now())
	if err != nil {
		return domain.User{}, &ValidationError{Reason: "bad registration input", Err: err}
	}
	created, err := s.users.Create(ctx, u)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.portfolios.Save(ctx, domain.NewPortfolio(created.ID)); err != nil {
		return domain.User{}, err
	}
	s.log.Info("user registered", zap.String("username", created.Username), zap.Int64("user_id", created.ID))
	return created, nil
}

// Login verifies credentials and records the session.
func (s *Service) Login(ctx context.Context, username, password string) (domain.User, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if !u.VerifyPassword(password) {
		return domain.User{}, ErrInvalidCredentials
	}
	if err := s.sessions.Set(ctx, u.Username); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// CurrentUser resolves the session to a user. A dangling session (user
// deleted since login) is cleared.
func (s *Service) CurrentUser(ctx context.Context) (domain.User, error) {
	username, err := s.sessions.Current(ctx)
	if errors.Is(err, ErrNotFound) {
		return domain.User{}, ErrNotLoggedIn
	}
	if err != nil {
		return domain.User{}, err
	}
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		_ = s.sessions.Clear(ctx)
		return domain.User{}, ErrNotLoggedIn
	}
	return u, err
}
