package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a single observed exchange rate. Immutable once created;
// a newer observation replaces the cache entry wholesale.
type Quote struct {
	Pair       Pair
	Rate       decimal.Decimal
	ObservedAt time.Time
	Source     string
}

// Validate rejects quotes a cache must never accept.
func (q Quote) Validate() error {
	if q.Pair.From == "" || q.Pair.To == "" || q.Pair.From == q.Pair.To {
		return fmt.Errorf("%w: %s", ErrInvalidPair, q.Pair)
	}
	if !q.Rate.IsPositive() {
		return fmt.Errorf("quote %s: rate must be positive, got %s", q.Pair, q.Rate)
	}
	return nil
}

// CacheEntry is a quote plus its expiry deadline, fixed at insertion.
type CacheEntry struct {
	Quote
	ExpiresAt time.Time
}

// Fresh reports whether the entry is still usable at the given instant.
func (e CacheEntry) Fresh(now time.Time) bool { return now.Before(e.ExpiresAt) }
