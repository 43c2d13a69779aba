// Package logging configures the process-wide logrus logger from the run
// configuration: level, color handling, and an optional file sink that
// receives a copy of every line.
package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/bbcollection-th/takeout-merge/internal/config"
	"github.com/bbcollection-th/takeout-merge/internal/term"
)

// Setup applies cfg to the standard logrus logger and returns a closer for
// the optional log file. Call the closer when the run finishes.
func Setup(cfg *config.Config) (func() error, error) {
	term.Configure(cfg.ColorMode)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		TimestampFormat:  "2006-01-02 15:04:05",
		ForceColors:      cfg.ColorMode == config.ColorAlways,
		DisableColors:    !term.Enabled(),
		DisableSorting:   true,
		QuoteEmptyFields: true,
	})

	if cfg.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}

	if cfg.LogFile == "" {
		logrus.SetOutput(os.Stdout)
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, f))
	return f.Close, nil
}
