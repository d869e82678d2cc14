package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/agegrader/internal/cli"
	"github.com/okian/agegrader/pkg/logger"
)

// Exit codes.
const (
	exitOK          = 0
	exitFailure     = 1
	exitUsage       = 2
	exitUnavailable = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := cli.ParseFlags(args, os.Stderr)
	if errors.Is(err, flag.ErrHelp) {
		return exitOK
	}
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		return exitUsage
	}

	// Logs go to stderr so stdout stays parseable with -json.
	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return exitFailure
	}
	level := "warn"
	if cfg.Verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = cli.Run(ctx, cfg, os.Stdout)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, cli.ErrUnavailable):
		return exitUnavailable
	case errors.Is(err, cli.ErrUsage):
		os.Stderr.WriteString(err.Error() + "\n")
		return exitUsage
	default:
		os.Stderr.WriteString(err.Error() + "\n")
		return exitFailure
	}
}
