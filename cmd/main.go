package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/localdb/internal/models"
	"github.com/desertthunder/localdb/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		Config:     shared.DefaultConfig(),
		ConfigPath: "config.toml",
		Logger:     logger,
	})

	app := newApp(runner)

	ctx, stop := interruptContext()
	err := app.Run(ctx, os.Args)
	stop()

	if err != nil {
		switch {
		case isUserError(err):
			logger.Error(err)
			os.Exit(2)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "localdb",
		Usage:   "Store songs and playlists in a local relational database",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Before:   r.Before,
		After:    r.After,
		Commands: r.register(),
	}
}

// interruptContext is cancelled on Ctrl-C so running exports and the TUI can stop.
func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// isUserError reports errors caused by bad input rather than a failing store.
func isUserError(err error) bool {
	for _, target := range []error{
		shared.ErrMissingArgument,
		shared.ErrInvalidArgument,
		shared.ErrInvalidFlag,
		shared.ErrInvalidInput,
		shared.ErrNotFound,
		shared.ErrDuplicate,
		models.ErrValidation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
