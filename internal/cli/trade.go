package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"valutatrade-hub/internal/application"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type buyCmd struct {
	app      *App
	currency string
	amount   string
}

func (*buyCmd) Name() string     { return "buy" }
func (*buyCmd) Synopsis() string { return "add units of a currency to the portfolio" }
func (*buyCmd) Usage() string {
	return `buy --currency <code> --amount <units>

  Credits the given amount to the logged-in portfolio. The reported cost
  is informational; no other balance is touched.
`
}

func (c *buyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "Currency code, e.g. BTC.")
	f.StringVar(&c.amount, "amount", "", "Amount in currency units.")
}

func (c *buyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return executeTrade(ctx, c.app, c.currency, c.amount, c.app.Svc.Buy)
}

type sellCmd struct {
	app      *App
	currency string
	amount   string
}

func (*sellCmd) Name() string     { return "sell" }
func (*sellCmd) Synopsis() string { return "remove units of a currency from the portfolio" }
func (*sellCmd) Usage() string {
	return `sell --currency <code> --amount <units>

  Debits the given amount from the logged-in portfolio. Fails without
  touching the balance when the holding does not cover it.
`
}

func (c *sellCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "Currency code, e.g. BTC.")
	f.StringVar(&c.amount, "amount", "", "Amount in currency units.")
}

func (c *sellCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return executeTrade(ctx, c.app, c.currency, c.amount, c.app.Svc.Sell)
}

type tradeFn func(ctx context.Context, currency string, amount decimal.Decimal) (application.TradeReceipt, error)

func executeTrade(ctx context.Context, app *App, currency, amount string, trade tradeFn) subcommands.ExitStatus {
	qty, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return app.fail(&application.ValidationError{Reason: "amount must be a number", Err: err})
	}
	receipt, err := trade(ctx, currency, qty)
	if err != nil {
		return app.fail(err)
	}
	printReceipt(app, receipt)
	return subcommands.ExitSuccess
}

func printReceipt(app *App, r application.TradeReceipt) {
	verb := "Bought"
	if r.Side == "sell" {
		verb = "Sold"
	}
	if r.Priced {
		fmt.Fprintf(app.out(), "%s %s %s @ %s %s (%s %s).\n",
			verb, r.Amount, r.Currency, r.Rate, r.Base, r.Value, r.Base)
	} else {
		fmt.Fprintf(app.out(), "%s %s %s (no %s rate available).\n",
			verb, r.Amount, r.Currency, r.Base)
	}
	fmt.Fprintf(app.out(), "Balance %s: %s -> %s\n", r.Currency, r.Before, r.After)
}
