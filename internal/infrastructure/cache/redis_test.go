package cache

import (
	"context"
	"testing"
	"time"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T, ttl time.Duration) *Redis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedis(client, ttl)
}

func TestRedis_PutThenGet(t *testing.T) {
	t.Parallel()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newRedisCache(t, 5*time.Minute).WithNow(func() time.Time { return at })

	q := testQuote(t, "BTC", "USD", "60000", at)
	require.NoError(t, c.Put(context.Background(), q))

	e, err := c.Get(context.Background(), q.Pair)
	require.NoError(t, err)
	require.True(t, e.Rate.Equal(q.Rate))
	require.Equal(t, "test", e.Source)
	require.Equal(t, at.Add(5*time.Minute), e.ExpiresAt)
}

func TestRedis_GetMiss(t *testing.T) {
	t.Parallel()
	c := newRedisCache(t, 5*time.Minute)

	p, err := domain.NewPair("BTC", "USD")
	require.NoError(t, err)
	_, err = c.Get(context.Background(), p)
	require.ErrorIs(t, err, application.ErrCacheMiss)
}

func TestRedis_ExpiredStillReturned(t *testing.T) {
	t.Parallel()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	now := at
	c := newRedisCache(t, 5*time.Minute).WithNow(func() time.Time { return now })

	q := testQuote(t, "BTC", "USD", "60000", at)
	require.NoError(t, c.Put(context.Background(), q))

	now = at.Add(time.Hour)
	e, err := c.Get(context.Background(), q.Pair)
	require.ErrorIs(t, err, application.ErrCacheExpired)
	require.True(t, e.Rate.Equal(q.Rate))
}

func TestRedis_Snapshot(t *testing.T) {
	t.Parallel()
	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	c := newRedisCache(t, 5*time.Minute).WithNow(func() time.Time { return at })

	require.NoError(t, c.Put(context.Background(), testQuote(t, "ETH", "USD", "3000", at)))
	require.NoError(t, c.Put(context.Background(), testQuote(t, "BTC", "USD", "60000", at)))

	all, err := c.Snapshot(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "BTC_USD", all[0].Pair.Key())

	filtered, err := c.Snapshot(context.Background(), "ETH")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
}
