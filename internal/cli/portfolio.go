package cli

import (
	"context"
	"flag"
	"fmt"
	"text/tabwriter"

	"github.com/google/subcommands"
)

type portfolioCmd struct {
	app  *App
	base string
}

func (*portfolioCmd) Name() string     { return "show-portfolio" }
func (*portfolioCmd) Synopsis() string { return "show holdings valued in the base currency" }
func (*portfolioCmd) Usage() string {
	return `show-portfolio [--base <code>]

  Values every holding of the logged-in user. Holdings without a
  resolvable rate are listed unpriced and excluded from the total.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.base, "base", "", "Valuation currency. Defaults to the configured base.")
}

func (c *portfolioCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	v, err := c.app.Svc.ShowPortfolio(ctx, c.base)
	if err != nil {
		return c.app.fail(err)
	}

	fmt.Fprintf(c.app.out(), "Portfolio of %q (in %s):\n", v.Username, v.Base)
	if len(v.Lines) == 0 {
		fmt.Fprintln(c.app.out(), "  (empty)")
		return subcommands.ExitSuccess
	}

	w := tabwriter.NewWriter(c.app.out(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "  CURRENCY\tAMOUNT\tRATE\tVALUE")
	for _, line := range v.Lines {
		switch {
		case !line.Priced:
			fmt.Fprintf(w, "  %s\t%s\t-\t-\n", line.Currency, line.Amount)
		case line.Stale:
			fmt.Fprintf(w, "  %s\t%s\t%s (stale)\t%s\n", line.Currency, line.Amount, line.Rate, line.Value)
		default:
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n", line.Currency, line.Amount, line.Rate, line.Value)
		}
	}
	w.Flush()
	fmt.Fprintf(c.app.out(), "Total: %s %s\n", v.Total, v.Base)
	return subcommands.ExitSuccess
}
