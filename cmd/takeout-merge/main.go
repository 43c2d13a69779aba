// takeout-merge writes the metadata from Google Photos Takeout JSON
// sidecars back into the media files they describe, using exiftool.
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/bbcollection-th/takeout-merge/internal/commands"
)

var version = "dev"

func main() {
	app := cli.NewApp()
	app.Name = "takeout-merge"
	app.Usage = "Merge Google Photos Takeout sidecar metadata into media files"
	app.Version = version
	app.EnableBashCompletion = true
	app.Commands = []cli.Command{
		commands.MergeCommand,
		commands.ScriptsCommand,
		commands.CheckCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
