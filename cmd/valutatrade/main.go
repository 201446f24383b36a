package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"valutatrade-hub/internal/bootstrap"
	"valutatrade-hub/internal/cli"
	"valutatrade-hub/internal/config"
	"valutatrade-hub/internal/infrastructure/logx"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func init() { _ = godotenv.Load() }

func main() {
	logger := logx.L()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := bootstrap.BuildService(ctx, cfg)
	if err != nil {
		logger.Fatal("bootstrap service", zap.Error(err))
	}

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(subcommands.HelpCommand(), "")
	commander.Register(subcommands.FlagsCommand(), "")
	commander.Register(subcommands.CommandsCommand(), "")
	cli.Register(commander, &cli.App{Svc: svc})

	flag.Parse()
	status := commander.Execute(ctx)
	cleanup()
	os.Exit(int(status))
}
