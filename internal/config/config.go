// Package config holds runtime configuration: defaults and validation.
// Flag binding lives in internal/commands; this package only defines the
// settings passed (by pointer) to the packages that need them.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// --- Enum types for validated string fields ---

// MergeMode controls how synthesized directives treat tags that already
// hold a value in the media file.
type MergeMode string

const (
	ModeAppendOnly MergeMode = "append"    // Never overwrite existing scalar tag values (default).
	ModeOverwrite  MergeMode = "overwrite" // Always overwrite.
)

// ScriptFormat selects the flavor of generated recovery scripts.
type ScriptFormat string

const (
	ScriptShell ScriptFormat = "sh"  // POSIX shell (default on non-Windows).
	ScriptBatch ScriptFormat = "bat" // Windows cmd batch file.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// Config holds all runtime settings. It is populated by [DefaultConfig] and
// then mutated by the CLI layer before being passed to packages that need it.
type Config struct {
	// Takeout root (positional arg).
	InputDir string

	// Merge behavior.
	Mode      MergeMode
	BatchSize int // Max entries per exiftool invocation. Default: 100.
	DryRun    bool

	// External tool.
	ExiftoolBin    string        // Default: "exiftool" (resolved via PATH).
	BatchTimeout   time.Duration // Base timeout per batch. Default: 30s.
	PerFileTimeout time.Duration // Added per batch entry. Default: 2s.

	// Recovery scripts.
	ScriptDir    string       // Where scripts are written. Default: input dir.
	ScriptFormat ScriptFormat // Default: platform-appropriate.

	// Display and logging.
	Verbose   bool
	ColorMode ColorMode // Default: "auto".
	LogFile   string    // Optional log file path.
	CheckOnly bool      // Run diagnostics and exit.
}

// DefaultConfig returns a Config with conservative defaults: append-only
// merging, 100-entry batches, scaled timeouts.
func DefaultConfig() Config {
	return Config{
		Mode:           ModeAppendOnly,
		BatchSize:      100,
		DryRun:         false,
		ExiftoolBin:    "exiftool",
		BatchTimeout:   30 * time.Second,
		PerFileTimeout: 2 * time.Second,
		ScriptFormat:   defaultScriptFormat(),
		Verbose:        false,
		ColorMode:      ColorAuto,
		CheckOnly:      false,
	}
}

// NormalizeDirArg strips trailing slashes from a directory path.
// The filesystem root "/" is returned unchanged so we don't produce an empty string.
func NormalizeDirArg(path string) string {
	if path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}

// Validate checks enum fields and numeric ranges. When not in CheckOnly
// mode, it also requires a non-empty input directory.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeAppendOnly, ModeOverwrite:
		// valid
	default:
		return errors.New("invalid mode (use 'append' or 'overwrite')")
	}

	switch c.ScriptFormat {
	case ScriptShell, ScriptBatch:
		// valid
	default:
		return errors.New("invalid script format (use 'sh' or 'bat')")
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return errors.New("invalid color mode (use 'auto', 'always' or 'never')")
	}

	if c.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1 (got %d)", c.BatchSize)
	}
	if c.BatchTimeout <= 0 || c.PerFileTimeout < 0 {
		return errors.New("timeouts must be positive")
	}
	if c.ExiftoolBin == "" {
		return errors.New("exiftool binary name must not be empty")
	}

	if c.CheckOnly {
		return nil
	}
	if c.InputDir == "" {
		return errors.New("need a takeout directory argument")
	}
	if c.ScriptDir == "" {
		c.ScriptDir = c.InputDir
	}
	return nil
}

// TimeoutFor returns the dispatch timeout for a batch of n entries. Scaling
// with batch size keeps an interrupted run's blast radius proportionate.
func (c *Config) TimeoutFor(n int) time.Duration {
	return c.BatchTimeout + time.Duration(n)*c.PerFileTimeout
}
