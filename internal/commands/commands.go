// Package commands wires the CLI surface: flag definitions, config
// assembly, and the action behind each subcommand.
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli"

	"github.com/bbcollection-th/takeout-merge/internal/config"
)

// Flags shared by the subcommands that talk to exiftool.
var toolFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "exiftool",
		Usage: "exiftool binary `PATH`",
		Value: "exiftool",
	},
	cli.BoolFlag{
		Name:  "verbose, v",
		Usage: "enable debug logging",
	},
	cli.StringFlag{
		Name:  "log-file",
		Usage: "also write the log to `FILE`",
	},
	cli.StringFlag{
		Name:  "color",
		Usage: "color output: auto, always or never",
		Value: string(config.ColorAuto),
	},
}

var scriptFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "script-dir",
		Usage: "write recovery scripts to `DIR` (default: the takeout directory)",
	},
	cli.StringFlag{
		Name:  "script-format",
		Usage: "recovery script flavor: sh or bat",
	},
}

// configFromContext builds a validated Config from defaults, flags, and
// the positional takeout directory argument. checkOnly relaxes the
// input-directory requirement for the diagnostics command.
func configFromContext(ctx *cli.Context, checkOnly bool) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.CheckOnly = checkOnly

	cfg.InputDir = config.NormalizeDirArg(ctx.Args().First())
	cfg.ExiftoolBin = ctx.String("exiftool")
	cfg.Verbose = ctx.Bool("verbose")
	cfg.LogFile = ctx.String("log-file")
	cfg.ColorMode = config.ColorMode(ctx.String("color"))

	if ctx.IsSet("mode") {
		cfg.Mode = config.MergeMode(ctx.String("mode"))
	}
	if ctx.IsSet("batch-size") {
		cfg.BatchSize = ctx.Int("batch-size")
	}
	if ctx.IsSet("batch-timeout") {
		cfg.BatchTimeout = time.Duration(ctx.Int("batch-timeout")) * time.Second
	}
	cfg.DryRun = ctx.Bool("dry-run")

	if ctx.IsSet("script-dir") {
		cfg.ScriptDir = config.NormalizeDirArg(ctx.String("script-dir"))
	}
	if ctx.IsSet("script-format") {
		cfg.ScriptFormat = config.ScriptFormat(ctx.String("script-format"))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// signalContext returns a context cancelled by SIGINT or SIGTERM, so a
// run stops cleanly at the next batch boundary.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func requireInputDir(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("need a takeout directory argument")
	}
	return nil
}
