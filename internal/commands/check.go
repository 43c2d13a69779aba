package commands

import (
	"github.com/urfave/cli"

	"github.com/bbcollection-th/takeout-merge/internal/check"
	"github.com/bbcollection-th/takeout-merge/internal/logging"
)

// CheckCommand prints exiftool diagnostics and exits.
var CheckCommand = cli.Command{
	Name:   "check",
	Usage:  "Check that exiftool is installed and usable",
	Flags:  toolFlags,
	Action: checkAction,
}

func checkAction(cliCtx *cli.Context) error {
	cfg, err := configFromContext(cliCtx, true)
	if err != nil {
		return err
	}

	closeLog, err := logging.Setup(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := signalContext()
	defer cancel()

	check.RunCheck(ctx, cfg)
	return nil
}
