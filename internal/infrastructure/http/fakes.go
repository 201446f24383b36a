package httpserver

import (
	"context"
	"strings"
	"time"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"
	"valutatrade-hub/internal/infrastructure/cache"
	"valutatrade-hub/internal/infrastructure/provider"

	"github.com/shopspring/decimal"
)

var _ application.ObservationRepo = (*fakeHistory)(nil)
var _ application.UserRepo = (*fakeUsers)(nil)
var _ application.PortfolioRepo = (*fakePortfolios)(nil)
var _ application.SessionStore = (*fakeSessions)(nil)

// NewInMemoryService wires the service against a memory cache and a fixed
// fake source; handy for handler tests and local smoke runs.
func NewInMemoryService() *application.Service {
	src := provider.NewFake("USD", map[string]decimal.Decimal{
		"BTC": decimal.RequireFromString("60000"),
		"ETH": decimal.RequireFromString("3000"),
	})
	return application.NewService(
		cache.NewMemory(5*time.Minute),
		[]application.QuoteSource{src},
		&fakeHistory{},
		&fakeUsers{},
		&fakePortfolios{},
		&fakeSessions{},
	)
}

type fakeHistory struct {
	obs []domain.Observation
}

func (f *fakeHistory) Append(_ context.Context, obs []domain.Observation) error {
	f.obs = append(f.obs, obs...)
	return nil
}

type fakeUsers struct {
	users  []domain.User
	nextID int64
}

func (f *fakeUsers) Create(_ context.Context, u domain.User) (domain.User, error) {
	for _, existing := range f.users {
		if strings.EqualFold(existing.Username, u.Username) {
			return domain.User{}, application.ErrUserExists
		}
	}
	f.nextID++
	u.ID = f.nextID
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (domain.User, error) {
	for _, u := range f.users {
		if strings.EqualFold(u.Username, username) {
			return u, nil
		}
	}
	return domain.User{}, application.ErrNotFound
}

type fakePortfolios struct {
	byUser map[int64]*domain.Portfolio
}

func (f *fakePortfolios) Get(_ context.Context, userID int64) (*domain.Portfolio, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return nil, application.ErrNotFound
	}
	return p, nil
}

func (f *fakePortfolios) Save(_ context.Context, p *domain.Portfolio) error {
	if f.byUser == nil {
		f.byUser = map[int64]*domain.Portfolio{}
	}
	f.byUser[p.UserID] = p
	return nil
}

type fakeSessions struct {
	current string
}

func (f *fakeSessions) Current(_ context.Context) (string, error) {
	if f.current == "" {
		return "", application.ErrNotFound
	}
	return f.current, nil
}

func (f *fakeSessions) Set(_ context.Context, username string) error {
	f.current = username
	return nil
}

func (f *fakeSessions) Clear(_ context.Context) error {
	f.current = ""
	return nil
}
