package cache

import (
	"context"
	"sort"
	"sync"
	"time"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"
)

// Memory is the in-process RateCache backend. Expiry is lazy: entries are
// kept past their deadline and reported as expired, never silently dropped,
// so callers can still serve stale data explicitly.
type Memory struct {
	mu      sync.RWMutex
	ttl     time.Duration
	nowFn   func() time.Time
	entries map[string]domain.CacheEntry
}

var _ application.RateCache = (*Memory)(nil)

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		ttl:     ttl,
		nowFn:   func() time.Time { return time.Now().UTC() },
		entries: map[string]domain.CacheEntry{},
	}
}

// WithNow overrides the clock; tests only.
func (c *Memory) WithNow(now func() time.Time) *Memory {
	c.nowFn = now
	return c
}

func (c *Memory) Get(_ context.Context, pair domain.Pair) (domain.CacheEntry, error) {
	c.mu.RLock()
	e, ok := c.entries[pair.Key()]
	c.mu.RUnlock()
	if !ok {
		return domain.CacheEntry{}, application.ErrCacheMiss
	}
	if !e.Fresh(c.nowFn()) {
		return e, application.ErrCacheExpired
	}
	return e, nil
}

func (c *Memory) Put(_ context.Context, q domain.Quote) error {
	if err := q.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[q.Pair.Key()] = domain.CacheEntry{Quote: q, ExpiresAt: q.ObservedAt.Add(c.ttl)}
	c.mu.Unlock()
	return nil
}

func (c *Memory) Snapshot(_ context.Context, currency string) ([]domain.CacheEntry, error) {
	c.mu.RLock()
	out := make([]domain.CacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		if currency != "" && !e.Quote.Pair.Involves(currency) {
			continue
		}
		out = append(out, e)
	}
	c.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		return out[i].Quote.Pair.Key() < out[j].Quote.Pair.Key()
	})
	return out, nil
}
