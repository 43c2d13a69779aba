// Package term provides ANSI color state and terminal detection for the
// banner and log output.
package term

import (
	"os"
	"strings"

	"github.com/bbcollection-th/takeout-merge/internal/config"
)

// ANSI color codes. Empty when colors are disabled, so concatenating them
// into output is a no-op.
var (
	Cyan = ""
	NC   = "" // Reset sequence.
)

// Configure resolves the color mode and sets the package-level ANSI
// variables. Call once during startup (from [logging.Setup]).
func Configure(mode config.ColorMode) {
	if resolve(mode) {
		Cyan = "\033[1;96m"
		NC = "\033[0m"
	} else {
		Cyan, NC = "", ""
	}
}

// Enabled reports whether ANSI colors are currently active.
func Enabled() bool { return NC != "" }

// resolve determines whether colors should be enabled based on the configured
// mode, TTY detection, and the NO_COLOR env var (https://no-color.org).
func resolve(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
