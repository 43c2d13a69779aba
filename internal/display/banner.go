// Package display holds the startup banner and other purely cosmetic
// terminal output.
package display

import (
	"fmt"
	"os"

	"github.com/bbcollection-th/takeout-merge/internal/term"
)

// PrintBanner prints the ASCII art banner; uses Cyan if colors are enabled.
func PrintBanner() {
	if term.Enabled() {
		fmt.Fprint(os.Stdout, term.Cyan)
	}
	fmt.Fprint(os.Stdout, ` _____     _                  _     __  __
|_   _|_ _| | _____  ___  _  _| |_  |  \/  | ___ _ __ __ _  ___
  | |/ _`+"`"+` | |/ / _ \/ _ \| || | __| | |\/| |/ _ \ '__/ _`+"`"+` |/ _ \
  | | (_| |   <  __/ (_) | || | |_  | |  | |  __/ | | (_| |  __/
  |_|\__,_|_|\_\___|\___/ \__,_|\__| |_|  |_|\___|_|  \__, |\___|
                                                      |___/
`)
	if term.Enabled() {
		fmt.Fprintln(os.Stdout, term.NC)
	}
}
