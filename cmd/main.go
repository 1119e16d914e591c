package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/spotilytics/internal/services"
	"github.com/desertthunder/spotilytics/internal/shared"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

func main() {
	logger := shared.NewLogger(nil)

	runner := NewRunner(RunnerOpts{
		ConfigPath: "config.toml",
		Logger:     logger,
	})

	if err := runner.app().Run(context.Background(), os.Args); err != nil {
		if services.IsUnauthorized(err) || errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrScopeRequired) {
			logger.Error("not signed in to Spotify", "error", err)
			fmt.Fprintln(os.Stderr, "Run: spotilytics auth login")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// app builds the root command. Global flags are read in Before, and
// connections opened by subcommands are released in After.
func (r *Runner) app() *cli.Command {
	return &cli.Command{
		Name:    "spotilytics",
		Usage:   "Spotify listening stats with a cached, authenticated API gateway",
		Version: version,
		Writer:  r.output,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.StringFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "Session profile to use",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override the configured log level",
			},
		},
		Before:   r.configure,
		After:    r.close,
		Commands: r.register(),
	}
}
