package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type registerCmd struct {
	app      *App
	username string
	password string
}

func (*registerCmd) Name() string     { return "register" }
func (*registerCmd) Synopsis() string { return "create a new account" }
func (*registerCmd) Usage() string {
	return `register --username <name> --password <password>

  Creates an account with an empty portfolio and logs it in.
`
}

func (c *registerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "Account name.")
	f.StringVar(&c.password, "password", "", "Account password, 4 characters minimum.")
}

func (c *registerCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, err := c.app.Svc.Register(ctx, c.username, c.password)
	if err != nil {
		return c.app.fail(err)
	}
	if _, err := c.app.Svc.Login(ctx, c.username, c.password); err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.out(), "Registered %q (id %d). You are now logged in.\n", user.Username, user.ID)
	return subcommands.ExitSuccess
}

type loginCmd struct {
	app      *App
	username string
	password string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "log in to an existing account" }
func (*loginCmd) Usage() string {
	return `login --username <name> --password <password>
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.username, "username", "", "Account name.")
	f.StringVar(&c.password, "password", "", "Account password.")
}

func (c *loginCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	user, err := c.app.Svc.Login(ctx, c.username, c.password)
	if err != nil {
		return c.app.fail(err)
	}
	fmt.Fprintf(c.app.out(), "Logged in as %q.\n", user.Username)
	return subcommands.ExitSuccess
}
