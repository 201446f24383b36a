// Package cli implements the interactive command surface on top of the
// application service.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"

	"github.com/google/subcommands"
)

// App carries the shared dependencies of every subcommand.
type App struct {
	Svc *application.Service
	Out io.Writer
	Err io.Writer
}

func (a *App) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

func (a *App) err() io.Writer {
	if a.Err != nil {
		return a.Err
	}
	return os.Stderr
}

// Register wires every subcommand into the commander.
func Register(c *subcommands.Commander, app *App) {
	c.Register(&registerCmd{app: app}, "account")
	c.Register(&loginCmd{app: app}, "account")

	c.Register(&buyCmd{app: app}, "trading")
	c.Register(&sellCmd{app: app}, "trading")
	c.Register(&portfolioCmd{app: app}, "trading")

	c.Register(&getRateCmd{app: app}, "rates")
	c.Register(&showRatesCmd{app: app}, "rates")
	c.Register(&updateRatesCmd{app: app}, "rates")
}

// fail prints the error and maps it to an exit status. Input-shaped
// problems report usage errors; everything else is a plain failure.
func (a *App) fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(a.err(), "Error:", err)

	var vErr *application.ValidationError
	if errors.As(err, &vErr) ||
		errors.Is(err, domain.ErrInvalidCurrencyCode) ||
		errors.Is(err, domain.ErrUnknownCurrency) {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}
