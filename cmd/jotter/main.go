package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/andrebq/jotter/cmd/jotter/initdb"
	"github.com/andrebq/jotter/cmd/jotter/serve"
	"github.com/andrebq/jotter/cmd/jotter/user"
	"github.com/andrebq/jotter/internal/logutil"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	var logLevel string
	var logPretty bool
	app := &cli.App{
		Name:  "jotter",
		Usage: "A tiny multi-user blog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "Minimum level for log messages (debug, info, warn, error)",
				Value:       "info",
				Destination: &logLevel,
				EnvVars:     []string{"JOTTER_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:        "log-pretty",
				Usage:       "Write human friendly logs to stderr instead of JSON",
				Destination: &logPretty,
			},
		},
		Before: func(ctx *cli.Context) error {
			return logutil.Setup(logLevel, logPretty)
		},
		Commands: []*cli.Command{
			initdb.Cmd(),
			serve.Cmd(),
			user.Cmd(),
		},
	}
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	err := app.RunContext(ctx, os.Args)
	if err != nil {
		log.Error().Err(err).Msg("Application failed")
		os.Exit(1)
	}
}
