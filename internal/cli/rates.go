package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/subcommands"
)

type getRateCmd struct {
	app  *App
	from string
	to   string
}

func (*getRateCmd) Name() string     { return "get-rate" }
func (*getRateCmd) Synopsis() string { return "resolve a conversion rate between two currencies" }
func (*getRateCmd) Usage() string {
	return `get-rate --from <code> --to <code>

  Resolves the rate from the cache, refreshing from the sources when
  nothing fresh is available. A stale rate is flagged as such.
`
}

func (c *getRateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.from, "from", "", "Source currency code.")
	f.StringVar(&c.to, "to", "", "Target currency code.")
}

func (c *getRateCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	res, err := c.app.Svc.Resolve(ctx, c.from, c.to)
	if err != nil {
		return c.app.fail(err)
	}
	suffix := ""
	if res.Stale {
		suffix = " (stale)"
	}
	fmt.Fprintf(c.app.out(), "%s = %s%s\n", res.Pair, res.Rate, suffix)
	fmt.Fprintf(c.app.out(), "as of %s via %s\n", res.AsOf.Format(time.RFC3339), res.Source)
	return subcommands.ExitSuccess
}

type showRatesCmd struct {
	app      *App
	currency string
}

func (*showRatesCmd) Name() string     { return "show-rates" }
func (*showRatesCmd) Synopsis() string { return "list cached rates" }
func (*showRatesCmd) Usage() string {
	return `show-rates [--currency <code>]

  Lists the cached quotes, optionally filtered to pairs involving one
  currency.
`
}

func (c *showRatesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.currency, "currency", "", "Only pairs involving this currency.")
}

func (c *showRatesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	entries, err := c.app.Svc.Rates(ctx, c.currency)
	if err != nil {
		return c.app.fail(err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.app.out(), "No cached rates. Run update-rates first.")
		return subcommands.ExitSuccess
	}

	w := tabwriter.NewWriter(c.app.out(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PAIR\tRATE\tUPDATED\tSOURCE")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Pair, e.Rate, e.ObservedAt.Format(time.RFC3339), e.Source)
	}
	w.Flush()
	return subcommands.ExitSuccess
}

type updateRatesCmd struct {
	app    *App
	source string
}

func (*updateRatesCmd) Name() string     { return "update-rates" }
func (*updateRatesCmd) Synopsis() string { return "refresh cached rates from the external sources" }
func (*updateRatesCmd) Usage() string {
	return `update-rates [--source <name>]

  Queries every source, or only the named one, and merges the results
  into the cache. Succeeds as long as at least one source responded.
`
}

func (c *updateRatesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.source, "source", "", "Restrict the refresh to one source.")
}

func (c *updateRatesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	report, err := c.app.Svc.RefreshRates(ctx, c.source, nil)
	if err != nil {
		return c.app.fail(err)
	}
	for _, f := range report.Failures {
		fmt.Fprintf(c.app.err(), "Warning: source %s failed: %v\n", f.Source, f.Err)
	}
	fmt.Fprintf(c.app.out(), "Updated %d rates", report.Updated)
	if report.Unresolved > 0 {
		fmt.Fprintf(c.app.out(), " (%d unresolved)", report.Unresolved)
	}
	fmt.Fprintln(c.app.out())

	if report.Updated == 0 && len(report.Failures) > 0 {
		fmt.Fprintln(c.app.err(), "Error: no source responded, cache unchanged")
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
