package application

import (
	"context"

	"valutatrade-hub/internal/domain"
)

// FetchResult is whatever a source managed to parse plus the number of
// requested pairs it could not resolve. Partial responses are valid.
type FetchResult struct {
	Quotes     []domain.Quote
	Unresolved int
}

// QuoteSource fetches raw quotes from one external provider.
// A nil pair slice means the source's full default coverage.
type QuoteSource interface {
	Name() string
	// Specialty is the pair category this source is authoritative for.
	Specialty() domain.Kind
	Fetch(ctx context.Context, pairs []domain.Pair) (FetchResult, error)
}

// RateCache is the time-bounded quote store. Get distinguishes a miss
// (ErrCacheMiss, zero entry) from an expired entry (ErrCacheExpired, stale
// entry still returned). Put always replaces wholesale.
type RateCache interface {
	Get(ctx context.Context, pair domain.Pair) (domain.CacheEntry, error)
	Put(ctx context.Context, q domain.Quote) error
	// Snapshot lists entries ordered by pair key; currency filters by
	// either side when non-empty.
	Snapshot(ctx context.Context, currency string) ([]domain.CacheEntry, error)
}

// ObservationRepo journals accepted quotes.
type ObservationRepo interface {
	Append(ctx context.Context, obs []domain.Observation) error
}

type UserRepo interface {
	// Create assigns the ID. Returns ErrUserExists on a username clash.
	Create(ctx context.Context, u domain.User) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
}

type PortfolioRepo interface {
	Get(ctx context.Context, userID int64) (*domain.Portfolio, error)
	Save(ctx context.Context, p *domain.Portfolio) error
}

// SessionStore tracks the logged-in username across CLI invocations.
type SessionStore interface {
	Current(ctx context.Context) (string, error)
	Set(ctx context.Context, username string) error
	Clear(ctx context.Context) error
}
