package main

import (
	"context"

	"github.com/AustinHatem/crema-live/util"
	"github.com/urfave/cli/v3"
)

// flags on the root are inherited by every subcommand
var commonFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "path to config.yaml",
		Sources: cli.EnvVars("CREMA_CONFIG"),
	},
	&cli.BoolFlag{
		Name:  "fixtures",
		Usage: "serve the built-in demo data instead of the database",
	},
	&cli.BoolFlag{
		Name:  "seed",
		Usage: "copy the demo data into an empty database",
	},
}

func makeApp() *cli.Command {
	return &cli.Command{
		Name:    util.Name,
		Usage:   "live streaming from the terminal",
		Version: util.GetVersion(),
		Flags:   commonFlags,
		// no subcommand means serve
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return serve(ctx, cmd)
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "serve the client over SSH, and the web feed when enabled",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return serve(ctx, cmd)
				},
			},
			{
				Name:  "local",
				Usage: "run the client in this terminal",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return local(ctx, cmd)
				},
			},
		},
	}
}
