package commands

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bbcollection-th/takeout-merge/internal/check"
	"github.com/bbcollection-th/takeout-merge/internal/config"
	"github.com/bbcollection-th/takeout-merge/internal/display"
	"github.com/bbcollection-th/takeout-merge/internal/logging"
	"github.com/bbcollection-th/takeout-merge/internal/pipeline"
)

// MergeCommand is the main workflow: merge sidecar metadata into media
// files under the given takeout directory.
var MergeCommand = cli.Command{
	Name:      "merge",
	Usage:     "Merge sidecar metadata into the media files of a takeout directory",
	ArgsUsage: "DIR",
	Flags: append(append([]cli.Flag{
		cli.StringFlag{
			Name:  "mode",
			Usage: "merge mode: append (keep existing values) or overwrite",
			Value: string(config.ModeAppendOnly),
		},
		cli.IntFlag{
			Name:  "batch-size",
			Usage: "max media files per exiftool invocation",
			Value: 100,
		},
		cli.IntFlag{
			Name:  "batch-timeout",
			Usage: "base batch timeout in `SECONDS` (grows with batch size)",
		},
		cli.BoolFlag{
			Name:  "dry-run, n",
			Usage: "plan everything but write nothing",
		},
	}, toolFlags...), scriptFlags...),
	Action: mergeAction,
}

func mergeAction(cliCtx *cli.Context) error {
	if err := requireInputDir(cliCtx); err != nil {
		return err
	}
	cfg, err := configFromContext(cliCtx, false)
	if err != nil {
		return err
	}

	closeLog, err := logging.Setup(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	display.PrintBanner()

	ctx, cancel := signalContext()
	defer cancel()

	if !cfg.DryRun {
		if err := check.CheckDeps(ctx, cfg); err != nil {
			return err
		}
	}

	stats, err := pipeline.Run(ctx, cfg)
	if err != nil {
		return err
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d sidecars failed", stats.Failed, stats.Total)
	}
	return nil
}
