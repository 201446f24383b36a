package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"valutatrade-hub/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func quoteAt(t *testing.T, from, to, rate, source string, at time.Time) domain.Quote {
	t.Helper()
	return domain.Quote{
		Pair:       mustPair(t, from, to),
		Rate:       decimal.RequireFromString(rate),
		ObservedAt: at,
		Source:     source,
	}
}

func Test_RefreshRates_MergesAllSources(t *testing.T) {
	t.Parallel()
	env := newTestEnv(nil)
	crypto := &fakeSource{name: "CoinGecko", kind: domain.KindCrypto, quotes: []domain.Quote{
		quoteAt(t, "BTC", "USD", "60000", "CoinGecko", env.at),
		quoteAt(t, "ETH", "USD", "3000", "CoinGecko", env.at),
	}}
	fiat := &fakeSource{name: "ExchangeRate", kind: domain.KindFiat, quotes: []domain.Quote{
		quoteAt(t, "EUR", "USD", "1.08", "ExchangeRate", env.at),
	}}
	env.svc.sources = []QuoteSource{crypto, fiat}

	report, err := env.svc.RefreshRates(context.Background(), "", nil)
	require.NoError(t, err)
	require.Equal(t, 3, report.Updated)
	require.Empty(t, report.Failures)
	require.Equal(t, "refresh-1", report.ID)

	entries, err := env.cache.Snapshot(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Len(t, env.history.obs, 3)
	require.Equal(t, "refresh-1", env.history.obs[0].RefreshID)
}

func Test_RefreshRates_SpecialtyWins(t *testing.T) {
	t.Parallel()
	env := newTestEnv(nil)
	// Both sources report BTC_USD in the same run; the fiat source's quote
	// is newer, but the crypto specialist wins for a crypto pair.
	crypto := &fakeSource{name: "CoinGecko", kind: domain.KindCrypto, quotes: []domain.Quote{
		quoteAt(t, "BTC", "USD", "60000", "CoinGecko", env.at.Add(-time.Minute)),
	}}
	fiat := &fakeSource{name: "ExchangeRate", kind: domain.KindFiat, quotes: []domain.Quote{
		quoteAt(t, "BTC", "USD", "59000", "ExchangeRate", env.at),
	}}
	env.svc.sources = []QuoteSource{crypto, fiat}

	report, err := env.svc.RefreshRates(context.Background(), "", nil)
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)

	e, err := env.cache.Get(context.Background(), mustPair(t, "BTC", "USD"))
	require.NoError(t, err)
	require.Equal(t, "CoinGecko", e.Source)
	require.Equal(t, "60000", e.Rate.String())
}

func Test_RefreshRates_NewerWinsBetweenPeers(t *testing.T) {
	t.Parallel()
	env := newTestEnv(nil)
	a := &fakeSource{name: "FakeA", kind: domain.KindFiat, quotes: []domain.Quote{
		quoteAt(t, "BTC", "USD", "59000", "FakeA", env.at.Add(-time.Minute)),
	}}
	b := &fakeSource{name: "FakeB", kind: domain.KindFiat, quotes: []domain.Quote{
		quoteAt(t, "BTC", "USD", "60000", "FakeB", env.at),
	}}
	env.svc.sources = []QuoteSource{a, b}

	_, err := env.svc.RefreshRates(context.Background(), "", nil)
	require.NoError(t, err)

	e, err := env.cache.Get(context.Background(), mustPair(t, "BTC", "USD"))
	require.NoError(t, err)
	require.Equal(t, "FakeB", e.Source)
}

func Test_RefreshRates_InvertsBaseQuotes(t *testing.T) {
	t.Parallel()
	env := newTestEnv(nil)
	src := &fakeSource{name: "ExchangeRate", kind: domain.KindFiat, quotes: []domain.Quote{
		quoteAt(t, "USD", "EUR", "0.8", "ExchangeRate", env.at),   // base on the wrong side
		quoteAt(t, "GBP", "JPY", "190", "ExchangeRate", env.at),   // off-base, dropped
	}}
	env.svc.sources = []QuoteSource{src}

	report, err := env.svc.RefreshRates(context.Background(), "", nil)
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)

	e, err := env.cache.Get(context.Background(), mustPair(t, "EUR", "USD"))
	require.NoError(t, err)
	require.True(t, e.Rate.Equal(decimal.RequireFromString("1.25")), "got %s", e.Rate)
}

func Test_RefreshRates_UnknownSource(t *testing.T) {
	t.Parallel()
	env := newTestEnv([]QuoteSource{&fakeSource{name: "CoinGecko", kind: domain.KindCrypto}})

	_, err := env.svc.RefreshRates(context.Background(), "binance", nil)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func Test_RefreshRates_ExplicitSourceOnly(t *testing.T) {
	t.Parallel()
	env := newTestEnv(nil)
	crypto := &fakeSource{name: "CoinGecko", kind: domain.KindCrypto, quotes: []domain.Quote{
		quoteAt(t, "BTC", "USD", "60000", "CoinGecko", env.at),
	}}
	fiat := &fakeSource{name: "ExchangeRate", kind: domain.KindFiat}
	env.svc.sources = []QuoteSource{crypto, fiat}

	report, err := env.svc.RefreshRates(context.Background(), "coingecko", nil)
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)
	require.Equal(t, 1, crypto.calls)
	require.Equal(t, 0, fiat.calls)
}

func Test_RefreshRates_SourceNameIgnoresPunctuation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(nil)
	fiat := &fakeSource{name: "ExchangeRate-API", kind: domain.KindFiat, quotes: []domain.Quote{
		quoteAt(t, "EUR", "USD", "1.1", "ExchangeRate-API", env.at),
	}}
	crypto := &fakeSource{name: "CoinGecko", kind: domain.KindCrypto}
	env.svc.sources = []QuoteSource{crypto, fiat}

	report, err := env.svc.RefreshRates(context.Background(), "exchangerate", nil)
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)
	require.Equal(t, 0, crypto.calls)
	require.Equal(t, 1, fiat.calls)
}

func Test_RefreshRates_ExplicitConfigurationErrorAborts(t *testing.T) {
	t.Parallel()
	src := &fakeSource{
		name: "ExchangeRate",
		kind: domain.KindFiat,
		err:  &ConfigurationError{Source: "ExchangeRate", Missing: "EXCHANGERATE_API_KEY"},
	}
	env := newTestEnv([]QuoteSource{src})

	_, err := env.svc.RefreshRates(context.Background(), "ExchangeRate", nil)
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, 0, env.cache.puts, "cache must stay untouched")
}

func Test_RefreshRates_ToleratesOneSourceDown(t *testing.T) {
	t.Parallel()
	env := newTestEnv(nil)
	crypto := &fakeSource{name: "CoinGecko", kind: domain.KindCrypto, quotes: []domain.Quote{
		quoteAt(t, "BTC", "USD", "60000", "CoinGecko", env.at),
	}}
	fiat := &fakeSource{name: "ExchangeRate", kind: domain.KindFiat, err: errors.New("503")}
	env.svc.sources = []QuoteSource{crypto, fiat}

	report, err := env.svc.RefreshRates(context.Background(), "", nil)
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)
	require.Len(t, report.Failures, 1)
	require.Equal(t, "ExchangeRate", report.Failures[0].Source)

	var srcErr *SourceUnavailableError
	require.ErrorAs(t, report.Failures[0].Err, &srcErr)
}

func Test_RefreshRates_ImplicitConfigurationErrorIsSkipped(t *testing.T) {
	t.Parallel()
	env := newTestEnv(nil)
	crypto := &fakeSource{name: "CoinGecko", kind: domain.KindCrypto, quotes: []domain.Quote{
		quoteAt(t, "BTC", "USD", "60000", "CoinGecko", env.at),
	}}
	fiat := &fakeSource{
		name: "ExchangeRate",
		kind: domain.KindFiat,
		err:  &ConfigurationError{Source: "ExchangeRate", Missing: "EXCHANGERATE_API_KEY"},
	}
	env.svc.sources = []QuoteSource{crypto, fiat}

	report, err := env.svc.RefreshRates(context.Background(), "", nil)
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)
	require.Len(t, report.Failures, 1)
}

func Test_RefreshRates_RejectsNonPositiveRate(t *testing.T) {
	t.Parallel()
	env := newTestEnv(nil)
	src := &fakeSource{name: "CoinGecko", kind: domain.KindCrypto, quotes: []domain.Quote{
		quoteAt(t, "BTC", "USD", "0", "CoinGecko", env.at),
		quoteAt(t, "ETH", "USD", "3000", "CoinGecko", env.at),
	}}
	env.svc.sources = []QuoteSource{src}

	report, err := env.svc.RefreshRates(context.Background(), "", nil)
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)

	_, err = env.cache.Get(context.Background(), mustPair(t, "BTC", "USD"))
	require.ErrorIs(t, err, ErrCacheMiss)
}

func Test_RefreshRates_HistoryFailureDoesNotUndoRefresh(t *testing.T) {
	t.Parallel()
	env := newTestEnv(nil)
	env.history.err = errors.New("disk full")
	src := &fakeSource{name: "CoinGecko", kind: domain.KindCrypto, quotes: []domain.Quote{
		quoteAt(t, "BTC", "USD", "60000", "CoinGecko", env.at),
	}}
	env.svc.sources = []QuoteSource{src}

	report, err := env.svc.RefreshRates(context.Background(), "", nil)
	require.NoError(t, err)
	require.Equal(t, 1, report.Updated)

	_, err = env.cache.Get(context.Background(), mustPair(t, "BTC", "USD"))
	require.NoError(t, err)
}

func Test_RefreshRates_DoubleRefreshIdempotent(t *testing.T) {
	t.Parallel()
	env := newTestEnv(nil)
	src := &fakeSource{name: "CoinGecko", kind: domain.KindCrypto, quotes: []domain.Quote{
		quoteAt(t, "BTC", "USD", "60000", "CoinGecko", env.at),
	}}
	env.svc.sources = []QuoteSource{src}

	_, err := env.svc.RefreshRates(context.Background(), "", nil)
	require.NoError(t, err)
	first, err := env.cache.Snapshot(context.Background(), "")
	require.NoError(t, err)

	_, err = env.svc.RefreshRates(context.Background(), "", nil)
	require.NoError(t, err)
	second, err := env.cache.Snapshot(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, second, len(first))
	for i := range first {
		require.Equal(t, first[i].Pair, second[i].Pair)
		require.True(t, first[i].Rate.Equal(second[i].Rate))
	}
}
