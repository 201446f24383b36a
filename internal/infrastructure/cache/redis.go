package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"
)

const redisKeyPrefix = "rate:"

// Redis is a RateCache backend shared across process invocations. Entries
// carry their own observation time; freshness is computed at read so an
// expired entry is still distinguishable from a miss. Redis-level expiry is
// deliberately not used for the same reason.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	nowFn  func() time.Time
}

var _ application.RateCache = (*Redis)(nil)

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{Client: client, TTL: ttl, nowFn: func() time.Time { return time.Now().UTC() }}
}

// WithNow overrides the clock; tests only.
func (c *Redis) WithNow(now func() time.Time) *Redis {
	c.nowFn = now
	return c
}

type redisEntry struct {
	Pair       string          `json:"pair"`
	Rate       decimal.Decimal `json:"rate"`
	ObservedAt time.Time       `json:"observed_at"`
	Source     string          `json:"source"`
}

func (c *Redis) Get(ctx context.Context, pair domain.Pair) (domain.CacheEntry, error) {
	raw, err := c.Client.Get(ctx, redisKeyPrefix+pair.Key()).Result()
	if errors.Is(err, redis.Nil) {
		return domain.CacheEntry{}, application.ErrCacheMiss
	}
	if err != nil {
		return domain.CacheEntry{}, fmt.Errorf("redis get %s: %w", pair, err)
	}
	e, err := c.decode([]byte(raw))
	if err != nil {
		return domain.CacheEntry{}, err
	}
	if !e.Fresh(c.nowFn()) {
		return e, application.ErrCacheExpired
	}
	return e, nil
}

func (c *Redis) Put(ctx context.Context, q domain.Quote) error {
	if err := q.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(redisEntry{
		Pair:       q.Pair.Key(),
		Rate:       q.Rate,
		ObservedAt: q.ObservedAt.UTC(),
		Source:     q.Source,
	})
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, redisKeyPrefix+q.Pair.Key(), payload, 0).Err()
}

func (c *Redis) Snapshot(ctx context.Context, currency string) ([]domain.CacheEntry, error) {
	var out []domain.CacheEntry
	iter := c.Client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		raw, err := c.Client.Get(ctx, iter.Val()).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("redis snapshot: %w", err)
		}
		e, err := c.decode([]byte(raw))
		if err != nil {
			return nil, err
		}
		if currency != "" && !e.Quote.Pair.Involves(currency) {
			continue
		}
		out = append(out, e)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis snapshot: %w", err)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Quote.Pair.Key() < out[j].Quote.Pair.Key()
	})
	return out, nil
}

func (c *Redis) decode(raw []byte) (domain.CacheEntry, error) {
	var rec redisEntry
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domain.CacheEntry{}, fmt.Errorf("redis decode: %w", err)
	}
	pair, err := domain.ParsePairKey(rec.Pair)
	if err != nil {
		return domain.CacheEntry{}, err
	}
	q := domain.Quote{Pair: pair, Rate: rec.Rate, ObservedAt: rec.ObservedAt, Source: rec.Source}
	return domain.CacheEntry{Quote: q, ExpiresAt: rec.ObservedAt.Add(c.TTL)}, nil
}
