package commands

import (
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/bbcollection-th/takeout-merge/internal/logging"
	"github.com/bbcollection-th/takeout-merge/internal/sidecar"
)

// ScriptsCommand regenerates the cleanup and rollback scripts from the
// processed markers currently on disk, without merging anything. Useful
// after moving a takeout tree or after a crash.
var ScriptsCommand = cli.Command{
	Name:      "scripts",
	Usage:     "Regenerate the cleanup and rollback recovery scripts",
	ArgsUsage: "DIR",
	Flags:     append(append([]cli.Flag{}, toolFlags...), scriptFlags...),
	Action:    scriptsAction,
}

func scriptsAction(cliCtx *cli.Context) error {
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

	paths, err := sidecar.WriteRecoveryScripts(cfg.InputDir, cfg.ScriptDir, cfg.ScriptFormat)
	if err != nil {
		return err
	}
	for _, p := range paths {
		log.Infof("wrote %s", p)
	}
	return nil
}
