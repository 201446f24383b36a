package application

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"valutatrade-hub/internal/domain"

	"github.com/shopspring/decimal"
)

type clockFunc func() time.Time

func (f clockFunc) Now() time.Time { return f() }

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("refresh-%d", g.n)
}

// fakeCache is an in-memory RateCache with an adjustable "now" so tests
// can expire entries without sleeping.
type fakeCache struct {
	ttl     time.Duration
	now     func() time.Time
	entries map[string]domain.CacheEntry
	putErr  error
	puts    int
}

func newFakeCache(ttl time.Duration, now func() time.Time) *fakeCache {
	return &fakeCache{ttl: ttl, now: now, entries: map[string]domain.CacheEntry{}}
}

func (c *fakeCache) Get(_ context.Context, pair domain.Pair) (domain.CacheEntry, error) {
	e, ok := c.entries[pair.Key()]
	if !ok {
		return domain.CacheEntry{}, ErrCacheMiss
	}
	if !e.Fresh(c.now()) {
		return e, ErrCacheExpired
	}
	return e, nil
}

func (c *fakeCache) Put(_ context.Context, q domain.Quote) error {
	if c.putErr != nil {
		return c.putErr
	}
	c.puts++
	c.entries[q.Pair.Key()] = domain.CacheEntry{Quote: q, ExpiresAt: q.ObservedAt.Add(c.ttl)}
	return nil
}

func (c *fakeCache) Snapshot(_ context.Context, currency string) ([]domain.CacheEntry, error) {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []domain.CacheEntry
	for _, k := range keys {
		e := c.entries[k]
		if currency != "" && !e.Pair.Involves(currency) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// seed stores a quote observed at the given time, bypassing Put counters.
func (c *fakeCache) seed(pair domain.Pair, rate string, at time.Time, source string) {
	q := domain.Quote{Pair: pair, Rate: decimal.RequireFromString(rate), ObservedAt: at, Source: source}
	c.entries[pair.Key()] = domain.CacheEntry{Quote: q, ExpiresAt: at.Add(c.ttl)}
}

type fakeSource struct {
	name   string
	kind   domain.Kind
	quotes []domain.Quote
	unres  int
	err    error
	calls  int
}

func (f *fakeSource) Name() string           { return f.name }
func (f *fakeSource) Specialty() domain.Kind { return f.kind }

func (f *fakeSource) Fetch(_ context.Context, _ []domain.Pair) (FetchResult, error) {
	f.calls++
	if f.err != nil {
		return FetchResult{}, f.err
	}
	return FetchResult{Quotes: f.quotes, Unresolved: f.unres}, nil
}

type fakeHistory struct {
	obs []domain.Observation
	err error
}

func (f *fakeHistory) Append(_ context.Context, obs []domain.Observation) error {
	if f.err != nil {
		return f.err
	}
	f.obs = append(f.obs, obs...)
	return nil
}

type fakeUsers struct {
	users  map[string]domain.User
	nextID int64
}

func (f *fakeUsers) Create(_ context.Context, u domain.User) (domain.User, error) {
	if f.users == nil {
		f.users = map[string]domain.User{}
	}
	if _, ok := f.users[strings.ToLower(u.Username)]; ok {
		return domain.User{}, ErrUserExists
	}
	f.nextID++
	u.ID = f.nextID
	f.users[strings.ToLower(u.Username)] = u
	return u, nil
}

func (f *fakeUsers) GetByUsername(_ context.Context, username string) (domain.User, error) {
	u, ok := f.users[strings.ToLower(username)]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return u, nil
}

type fakePortfolios struct {
	byUser map[int64]*domain.Portfolio
}

func (f *fakePortfolios) Get(_ context.Context, userID int64) (*domain.Portfolio, error) {
	p, ok := f.byUser[userID]
	if !ok {
		return nil, ErrNotFound
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

type fakeSessions struct{ current string }

func (f *fakeSessions) Current(_ context.Context) (string, error) {
	if f.current == "" {
		return "", ErrNotFound
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

// testEnv bundles the service and its fakes; at drives both the clock and
// cache freshness, so advancing it expires entries.
type testEnv struct {
	svc        *Service
	cache      *fakeCache
	history    *fakeHistory
	users      *fakeUsers
	portfolios *fakePortfolios
	sessions   *fakeSessions
	at         time.Time
}

func newTestEnv(sources []QuoteSource, opts ...Option) *testEnv {
	env := &testEnv{
		history:    &fakeHistory{},
		users:      &fakeUsers{},
		portfolios: &fakePortfolios{},
		sessions:   &fakeSessions{},
		at:         time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return env.at }
	env.cache = newFakeCache(5*time.Minute, now)
	opts = append([]Option{WithClock(clockFunc(now)), WithIDGen(&seqIDGen{})}, opts...)
	env.svc = NewService(env.cache, sources, env.history, env.users, env.portfolios, env.sessions, opts...)
	return env
}
