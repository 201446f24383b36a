package jsonstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"
)

// Rates is the file-backed RateCache: the rates.json snapshot read and
// rewritten whole on every mutation. Put is read-modify-write under a
// process-local mutex; cross-process writers rely on the atomic rename.
type Rates struct {
	mu    sync.Mutex
	path  string
	ttl   time.Duration
	nowFn func() time.Time
}

var _ application.RateCache = (*Rates)(nil)

func NewRates(path string, ttl time.Duration) *Rates {
	return &Rates{path: path, ttl: ttl, nowFn: func() time.Time { return time.Now().UTC() }}
}

// WithNow overrides the clock; tests only.
func (s *Rates) WithNow(now func() time.Time) *Rates {
	s.nowFn = now
	return s
}

type ratesFile struct {
	Pairs       map[string]rateRecord `json:"pairs"`
	LastRefresh time.Time             `json:"last_refresh"`
}

type rateRecord struct {
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
	Source    string          `json:"source"`
}

func (s *Rates) load() (ratesFile, error) {
	f := ratesFile{Pairs: map[string]rateRecord{}}
	if _, err := readJSON(s.path, &f); err != nil {
		return ratesFile{}, err
	}
	if f.Pairs == nil {
		f.Pairs = map[string]rateRecord{}
	}
	return f, nil
}

func (s *Rates) entry(key string, rec rateRecord) (domain.CacheEntry, error) {
	pair, err := domain.ParsePairKey(key)
	if err != nil {
		return domain.CacheEntry{}, err
	}
	q := domain.Quote{Pair: pair, Rate: rec.Rate, ObservedAt: rec.UpdatedAt, Source: rec.Source}
	return domain.CacheEntry{Quote: q, ExpiresAt: rec.UpdatedAt.Add(s.ttl)}, nil
}

func (s *Rates) Get(_ context.Context, pair domain.Pair) (domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return domain.CacheEntry{}, err
	}
	rec, ok := f.Pairs[pair.Key()]
	if !ok {
		return domain.CacheEntry{}, application.ErrCacheMiss
	}
	e, err := s.entry(pair.Key(), rec)
	if err != nil {
		return domain.CacheEntry{}, err
	}
	if !e.Fresh(s.nowFn()) {
		return e, application.ErrCacheExpired
	}
	return e, nil
}

func (s *Rates) Put(_ context.Context, q domain.Quote) error {
	if err := q.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return err
	}
	f.Pairs[q.Pair.Key()] = rateRecord{Rate: q.Rate, UpdatedAt: q.ObservedAt.UTC(), Source: q.Source}
	f.LastRefresh = s.nowFn()
	return writeAtomic(s.path, f)
}

func (s *Rates) Snapshot(_ context.Context, currency string) ([]domain.CacheEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(f.Pairs))
	for k := range f.Pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out []domain.CacheEntry
	for _, k := range keys {
		e, err := s.entry(k, f.Pairs[k])
		if err != nil {
			return nil, err
		}
		if currency != "" && !e.Quote.Pair.Involves(currency) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}
