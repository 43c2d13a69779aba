// Package pipeline orchestrates the merge run: sidecar discovery, parsing
// and planning, batch dispatch to exiftool, ledger marking, and the
// end-of-run summary. Processing is strictly sequential; exiftool itself
// is the bottleneck and a single batched process keeps failure handling
// simple to reason about.
package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/bbcollection-th/takeout-merge/internal/config"
	"github.com/bbcollection-th/takeout-merge/internal/exiftool"
	"github.com/bbcollection-th/takeout-merge/internal/fixext"
	"github.com/bbcollection-th/takeout-merge/internal/merge"
	"github.com/bbcollection-th/takeout-merge/internal/sidecar"
)

// ErrMediaNotFound means a sidecar points at a media file that is not in
// the directory, usually a partially extracted Takeout archive.
var ErrMediaNotFound = errors.New("media file referenced by sidecar does not exist")

// Run is the top-level merge entry point. It discovers pending sidecars,
// plans and dispatches them in batches, marks successes in the ledger, and
// regenerates the recovery scripts.
func Run(ctx context.Context, cfg *config.Config) (*RunStats, error) {
	stats := NewRunStats()

	disc, err := Discover(cfg.InputDir)
	if err != nil {
		return stats, err
	}
	stats.Total = len(disc.Sidecars)
	stats.AlreadyProcessed = disc.AlreadyProcessed

	log.Infof("Found %d pending sidecars in %s (%d already processed)",
		stats.Total, cfg.InputDir, stats.AlreadyProcessed)

	writable := loadWritableSet(ctx, cfg)

	detector, err := fixext.NewDetector(cfg.ExiftoolBin)
	if err != nil {
		log.WithError(err).Warn("content-type probe unavailable, extension fixes will trust exiftool's hint")
		detector = nil
	} else {
		defer detector.Close()
	}

	d := &exiftool.Dispatcher{
		Bin:     cfg.ExiftoolBin,
		Timeout: cfg.TimeoutFor,
		Fix:     fixHook(detector, fixext.NewResolver()),
	}

	albums := albumCache{}
	batch := make([]exiftool.Entry, 0, cfg.BatchSize)

	for i, scPath := range disc.Sidecars {
		stats.Current = i + 1

		if ctx.Err() != nil {
			log.Warn("Interrupted, stopping before the next sidecar")
			break
		}

		entry, ok := prepare(cfg, scPath, albums, writable, stats)
		if !ok {
			continue
		}

		batch = append(batch, entry)
		if len(batch) >= cfg.BatchSize {
			flush(ctx, cfg, d, batch, stats)
			batch = batch[:0]
		}
	}

	if ctx.Err() == nil && len(batch) > 0 {
		flush(ctx, cfg, d, batch, stats)
	}

	if !cfg.DryRun {
		if _, err := sidecar.WriteRecoveryScripts(cfg.InputDir, cfg.ScriptDir, cfg.ScriptFormat); err != nil {
			log.WithError(err).Warn("could not write recovery scripts")
		}
	}

	stats.LogSummary()
	return stats, nil
}

// prepare turns one sidecar path into a dispatchable batch entry. A false
// return means the sidecar was consumed here (failed, skipped, or carried
// nothing to merge) and the stats already reflect it.
func prepare(cfg *config.Config, scPath string, albums albumCache, writable map[string]bool, stats *RunStats) (exiftool.Entry, bool) {
	base := filepath.Base(scPath)
	log.Debugf("[%d/%d] %s", stats.Current, stats.Total, base)

	data, err := os.ReadFile(scPath)
	if err != nil {
		log.WithError(err).Errorf("cannot read %s", base)
		stats.RecordFailure("unreadable sidecar")
		return exiftool.Entry{}, false
	}

	rec, err := sidecar.Parse(data, scPath)
	if err != nil {
		log.WithError(err).Errorf("cannot use %s", base)
		stats.RecordFailure(failureReason(err))
		return exiftool.Entry{}, false
	}

	dir := filepath.Dir(scPath)
	mediaPath := filepath.Join(dir, rec.ExpectedFilename)
	if _, err := os.Stat(mediaPath); err != nil {
		log.Errorf("%s: %v", base, ErrMediaNotFound)
		stats.RecordFailure(failureReason(ErrMediaNotFound))
		return exiftool.Entry{}, false
	}

	if writable != nil {
		ext := fixext.Canonical(filepath.Ext(mediaPath))
		if !writable[strings.ToUpper(ext)] {
			log.Warnf("skip %s: exiftool cannot write .%s files", rec.ExpectedFilename, ext)
			stats.Unsupported++
			return exiftool.Entry{}, false
		}
	}

	if d := rec.Disposition(); d != sidecar.DispositionNormal {
		log.Debugf("%s is %s in the library", rec.ExpectedFilename, d)
	}

	if title := albums.titleFor(dir); title != "" {
		rec.Albums = []string{title}
	}

	plan := merge.Synthesize(rec, IsVideo(rec.ExpectedFilename), cfg.Mode)
	if !plan.HasTagWrites() {
		stats.NoMetadata++
		if !cfg.DryRun {
			// Nothing to write is still a completed sidecar.
			if _, err := sidecar.MarkProcessed(scPath); err != nil {
				log.WithError(err).Warnf("could not mark %s", base)
			}
		}
		return exiftool.Entry{}, false
	}

	return exiftool.Entry{MediaPath: mediaPath, SidecarPath: scPath, Plan: plan}, true
}

// flush dispatches one accumulated batch and folds the outcomes into the
// stats and the ledger.
func flush(ctx context.Context, cfg *config.Config, d *exiftool.Dispatcher, batch []exiftool.Entry, stats *RunStats) {
	if cfg.DryRun {
		for _, e := range batch {
			log.Infof("[dry-run] would merge %d directives into %s",
				len(e.Plan), filepath.Base(e.MediaPath))
			stats.Merged++
		}
		return
	}

	for _, o := range d.Dispatch(ctx, batch) {
		base := filepath.Base(o.Entry.MediaPath)

		switch o.Status {
		case exiftool.EntryMerged:
			stats.Merged++
		case exiftool.EntryMergedConditionSkipped:
			stats.ConditionSkipped++
		case exiftool.EntryMergedWithWarnings:
			stats.Warned++
			log.Warnf("%s merged, some tags unsupported by its format", base)
		case exiftool.EntryRenamedAndMerged:
			stats.Renamed++
			log.Infof("%s merged after extension fix", base)
		default:
			log.WithError(o.Err).Errorf("merge failed for %s", base)
			stats.RecordFailure("exiftool write failed")
			continue
		}

		if fi, err := os.Stat(o.Entry.MediaPath); err == nil {
			stats.MergedBytes += fi.Size()
		}

		if _, err := sidecar.MarkProcessed(o.Entry.SidecarPath); err != nil {
			// The merge itself is idempotent, so an unmarked success only
			// costs a redundant re-merge on the next run.
			log.WithError(err).Warnf("merged %s but could not mark its sidecar", base)
			stats.FailureReasons["marker rename failed"]++
		}
	}
}

// fixHook adapts the extension resolver to the dispatcher's hook shape,
// preferring a real content probe over the extension exiftool guessed in
// its error message.
func fixHook(detector *fixext.Detector, resolver *fixext.Resolver) exiftool.FixFunc {
	return func(_ context.Context, mediaPath, sidecarPath, hintExt string) (string, string, error) {
		ext := hintExt
		if detector != nil {
			if probed, err := detector.Detect(mediaPath); err == nil {
				ext = probed
			}
		}

		res, err := resolver.Fix(mediaPath, sidecarPath, ext)
		if err != nil {
			if res.Phase == fixext.PhaseInconsistent {
				log.Errorf("manual repair needed: media %s now pairs with sidecar %s",
					res.MediaPath, res.SidecarPath)
			}
			return "", "", err
		}
		return res.MediaPath, res.SidecarPath, nil
	}
}

// albumCache memoizes per-directory album titles, "" meaning the directory
// has no usable album descriptor.
type albumCache map[string]string

func (c albumCache) titleFor(dir string) string {
	if t, ok := c[dir]; ok {
		return t
	}
	t := ""
	if data, err := os.ReadFile(filepath.Join(dir, sidecar.AlbumMetaName)); err == nil {
		t = sidecar.AlbumTitle(data)
	}
	c[dir] = t
	return t
}

// loadWritableSet queries exiftool's writable formats once per run. A
// query failure disables the gate rather than the run.
func loadWritableSet(ctx context.Context, cfg *config.Config) map[string]bool {
	set, err := exiftool.WritableExtensions(ctx, cfg.ExiftoolBin)
	if err != nil {
		log.WithError(err).Warn("could not query writable formats, skipping the format gate")
		return nil
	}
	return set
}

// failureReason buckets an error for the summary histogram.
func failureReason(err error) string {
	switch {
	case errors.Is(err, sidecar.ErrMalformedJSON):
		return "malformed sidecar JSON"
	case errors.Is(err, sidecar.ErrMissingTitle):
		return "sidecar has no title"
	case errors.Is(err, sidecar.ErrTitleMismatch):
		return "sidecar title mismatch"
	case errors.Is(err, sidecar.ErrUnrecognizedName):
		return "unrecognized sidecar name"
	case errors.Is(err, ErrMediaNotFound):
		return "media file missing"
	default:
		return "sidecar unusable"
	}
}
