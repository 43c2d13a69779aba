// Package check provides system diagnostics (--check mode) and pre-run
// dependency validation for the exiftool binary.
package check

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bbcollection-th/takeout-merge/internal/config"
	"github.com/bbcollection-th/takeout-merge/internal/exiftool"
)

// Sentinel errors returned by CheckDeps when the external tool is unusable.
var (
	ErrExiftoolNotFound    = errors.New("exiftool not found on PATH")
	ErrExiftoolNotRunnable = errors.New("exiftool found but not runnable")
)

const probeTimeout = 10 * time.Second

// RunCheck runs the interactive --check flow: binary location, version,
// writable-format inventory, and argfile support. Informational only, it
// does not stop on failure.
func RunCheck(ctx context.Context, cfg *config.Config) {
	log.Info("=== System Check ===")

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	path, err := exec.LookPath(cfg.ExiftoolBin)
	if err != nil {
		log.Errorf("exiftool not found (looked for %q)", cfg.ExiftoolBin)
		return
	}
	log.Infof("exiftool binary: %s", path)

	ver, err := exiftool.Version(ctx, cfg.ExiftoolBin)
	if err != nil {
		log.Warnf("exiftool found but -ver failed: %v", err)
		return
	}
	log.Infof("exiftool version: %s", ver)

	wf, err := exiftool.WritableExtensions(ctx, cfg.ExiftoolBin)
	if err != nil {
		log.Warnf("could not list writable formats: %v", err)
		return
	}
	log.Infof("writable formats: %d", len(wf))

	for _, ext := range []string{"JPG", "PNG", "HEIC", "MP4", "MOV"} {
		if wf[ext] {
			log.Infof("  %s writable", ext)
		} else {
			log.Warnf("  %s NOT writable", ext)
		}
	}
}

// CheckDeps is the pre-run validation: the configured exiftool binary must
// exist and answer -ver. Returns a sentinel error on failure.
func CheckDeps(ctx context.Context, cfg *config.Config) error {
	if _, err := exec.LookPath(cfg.ExiftoolBin); err != nil {
		return fmt.Errorf("%w (looked for %q)", ErrExiftoolNotFound, cfg.ExiftoolBin)
	}

	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	if _, err := exiftool.Version(ctx, cfg.ExiftoolBin); err != nil {
		return fmt.Errorf("%w: %v", ErrExiftoolNotRunnable, err)
	}
	return nil
}
