package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"
	"valutatrade-hub/internal/infrastructure/cache"
	"valutatrade-hub/internal/infrastructure/jsonstore"
	"valutatrade-hub/internal/infrastructure/provider"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	src := provider.NewFake("USD", map[string]decimal.Decimal{
		"BTC": decimal.RequireFromString("108399"),
		"ETH": decimal.RequireFromString("3000"),
	})
	svc := application.NewService(
		cache.NewMemory(5*time.Minute),
		[]application.QuoteSource{src},
		jsonstore.NewHistory(dir+"/exchange_rates.json"),
		jsonstore.NewUsers(dir+"/users.json"),
		jsonstore.NewPortfolios(dir+"/portfolios.json"),
		jsonstore.NewSession(dir+"/session.json"),
	)
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &App{Svc: svc, Out: out, Err: errOut}, out, errOut
}

func TestRegisterLoginBuyPortfolio(t *testing.T) {
	t.Parallel()
	app, out, _ := newTestApp(t)
	ctx := context.Background()

	reg := &registerCmd{app: app, username: "alice", password: "s3cret"}
	require.Equal(t, subcommands.ExitSuccess, reg.Execute(ctx, nil))
	require.Contains(t, out.String(), `Registered "alice"`)

	buy := &buyCmd{app: app, currency: "btc", amount: "0.005"}
	require.Equal(t, subcommands.ExitSuccess, buy.Execute(ctx, nil))
	require.Contains(t, out.String(), "Bought 0.005 BTC @ 108399 USD (541.995 USD).")

	out.Reset()
	pf := &portfolioCmd{app: app}
	require.Equal(t, subcommands.ExitSuccess, pf.Execute(ctx, nil))
	text := out.String()
	require.Contains(t, text, `Portfolio of "alice" (in USD):`)
	require.Contains(t, text, "BTC")
	require.Contains(t, text, "Total: 541.995 USD")
}

func TestSellInsufficientFunds(t *testing.T) {
	t.Parallel()
	app, _, errOut := newTestApp(t)
	ctx := context.Background()

	reg := &registerCmd{app: app, username: "bob", password: "hunter2"}
	require.Equal(t, subcommands.ExitSuccess, reg.Execute(ctx, nil))

	sell := &sellCmd{app: app, currency: "ETH", amount: "1"}
	require.Equal(t, subcommands.ExitFailure, sell.Execute(ctx, nil))
	require.Contains(t, errOut.String(), "insufficient")
}

func TestTradeRequiresLogin(t *testing.T) {
	t.Parallel()
	app, _, errOut := newTestApp(t)
	ctx := context.Background()

	buy := &buyCmd{app: app, currency: "BTC", amount: "1"}
	require.Equal(t, subcommands.ExitFailure, buy.Execute(ctx, nil))
	require.Contains(t, errOut.String(), "Error:")
}

func TestBuyBadAmount(t *testing.T) {
	t.Parallel()
	app, _, _ := newTestApp(t)
	ctx := context.Background()

	buy := &buyCmd{app: app, currency: "BTC", amount: "lots"}
	require.Equal(t, subcommands.ExitUsageError, buy.Execute(ctx, nil))
}

func TestUpdateAndShowRates(t *testing.T) {
	t.Parallel()
	app, out, _ := newTestApp(t)
	ctx := context.Background()

	upd := &updateRatesCmd{app: app}
	require.Equal(t, subcommands.ExitSuccess, upd.Execute(ctx, nil))
	require.Contains(t, out.String(), "Updated 2 rates")

	out.Reset()
	show := &showRatesCmd{app: app, currency: "BTC"}
	require.Equal(t, subcommands.ExitSuccess, show.Execute(ctx, nil))
	require.Contains(t, out.String(), "BTC/USD")
	require.NotContains(t, out.String(), "ETH/USD")
}

func TestUpdateRatesAllSourcesDown(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	src := &provider.Fake{SourceName: "Fake", Kind: domain.KindCrypto, Base: "USD", Err: context.DeadlineExceeded}
	svc := application.NewService(
		cache.NewMemory(5*time.Minute),
		[]application.QuoteSource{src},
		jsonstore.NewHistory(dir+"/exchange_rates.json"),
		jsonstore.NewUsers(dir+"/users.json"),
		jsonstore.NewPortfolios(dir+"/portfolios.json"),
		jsonstore.NewSession(dir+"/session.json"),
	)
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	app := &App{Svc: svc, Out: out, Err: errOut}

	upd := &updateRatesCmd{app: app}
	require.Equal(t, subcommands.ExitFailure, upd.Execute(context.Background(), nil))
	require.Contains(t, errOut.String(), "no source responded")
}

func TestGetRateIdentity(t *testing.T) {
	t.Parallel()
	app, out, _ := newTestApp(t)

	get := &getRateCmd{app: app, from: "usd", to: "USD"}
	require.Equal(t, subcommands.ExitSuccess, get.Execute(context.Background(), nil))
	require.True(t, strings.HasPrefix(out.String(), "USD/USD = 1"))
}
