package exiftool

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/bbcollection-th/takeout-merge/internal/merge"
)

// Entry is one media file queued for a batch, with its planned writes.
type Entry struct {
	MediaPath   string
	SidecarPath string
	Plan        merge.DirectiveList
}

// EntryStatus is the final per-file verdict after dispatch, including the
// one rename-and-retry pass for format mismatches.
type EntryStatus int

const (
	EntryMerged EntryStatus = iota
	EntryMergedConditionSkipped
	EntryMergedWithWarnings
	EntryRenamedAndMerged
	EntryFailed
)

func (s EntryStatus) String() string {
	switch s {
	case EntryMerged:
		return "merged"
	case EntryMergedConditionSkipped:
		return "merged (existing values kept)"
	case EntryMergedWithWarnings:
		return "merged (some tags unsupported)"
	case EntryRenamedAndMerged:
		return "renamed and merged"
	default:
		return "failed"
	}
}

// Merged reports whether the status counts as a successful merge for
// ledger-marking purposes.
func (s EntryStatus) Merged() bool {
	return s != EntryFailed
}

// Outcome pairs an entry with its verdict. MediaPath reflects any rename
// performed during recovery.
type Outcome struct {
	Entry  Entry
	Status EntryStatus
	Err    error
}

// FixFunc repairs a media file whose content does not match its extension:
// it renames the media (and its sidecar) to the detected extension and
// returns the new paths. Wired to the extension resolver by the pipeline;
// injectable for tests.
type FixFunc func(ctx context.Context, mediaPath, sidecarPath, detectedExt string) (newMedia, newSidecar string, err error)

// ErrBatchFailed is wrapped into every entry error when an invocation
// fails as a whole.
var ErrBatchFailed = errors.New("exiftool batch invocation failed")

// Dispatcher executes batches and turns invocation-level classifications
// into per-entry outcomes.
type Dispatcher struct {
	Bin     string
	Timeout func(entries int) time.Duration

	Run RunFunc // defaults to [Run]
	Fix FixFunc // nil disables mismatch recovery
}

func (d *Dispatcher) run(ctx context.Context, entries []Entry) Result {
	runFn := d.Run
	if runFn == nil {
		runFn = Run
	}
	var timeout time.Duration
	if d.Timeout != nil {
		timeout = d.Timeout(len(entries))
	}
	return runFn(ctx, d.Bin, RenderArgfile(entries), timeout)
}

// Dispatch runs one batch and returns an outcome per entry, in input
// order. Format mismatches get exactly one recovery pass: the affected
// files are renamed to their detected extension and re-dispatched as a
// sub-batch; a second mismatch on the same file is a failure.
func (d *Dispatcher) Dispatch(ctx context.Context, entries []Entry) []Outcome {
	return d.dispatch(ctx, entries, true)
}

func (d *Dispatcher) dispatch(ctx context.Context, entries []Entry, allowRetry bool) []Outcome {
	if len(entries) == 0 {
		return nil
	}

	res := d.run(ctx, entries)
	status := Classify(res)

	log.WithFields(log.Fields{
		"entries": len(entries),
		"status":  status.String(),
	}).Debug("batch dispatched")

	switch status {
	case BatchSuccess:
		return uniform(entries, EntryMerged, nil)
	case BatchPartialConditionFailure:
		return uniform(entries, EntryMergedConditionSkipped, nil)
	case BatchPartialUnsupportedField:
		return d.partialUnsupported(entries, res)
	case BatchFormatMismatch:
		if allowRetry && d.Fix != nil {
			return d.recoverMismatch(ctx, entries, res)
		}
		return d.failMismatched(entries, res)
	case BatchToolNotFound:
		return uniform(entries, EntryFailed,
			fmt.Errorf("%w: %v", ErrBatchFailed, res.Err))
	default:
		if MatchEncodingIssue(res.Stderr) {
			return uniform(entries, EntryFailed,
				fmt.Errorf("%w: character encoding problem (%s)", ErrBatchFailed, firstLine(res.Stderr)))
		}
		return uniform(entries, EntryFailed,
			fmt.Errorf("%w: %v (stderr: %s)", ErrBatchFailed, res.Err, firstLine(res.Stderr)))
	}
}

// partialUnsupported marks the files named in warnings, keeping the rest
// as clean merges. If no path can be parsed out, the conservative reading
// is that every entry saw the warning.
func (d *Dispatcher) partialUnsupported(entries []Entry, res Result) []Outcome {
	affected := pathSet(AffectedPaths(res.Stderr))
	if len(affected) == 0 {
		return uniform(entries, EntryMergedWithWarnings, nil)
	}
	out := make([]Outcome, len(entries))
	for i, e := range entries {
		st := EntryMerged
		if affected[e.MediaPath] {
			st = EntryMergedWithWarnings
		}
		out[i] = Outcome{Entry: e, Status: st}
	}
	return out
}

// recoverMismatch renames mismatched files to their detected extension and
// re-dispatches them once. Entries the stderr did not implicate are
// re-dispatched too (without rename): plans are idempotent, and re-running
// them is cheaper than trusting that the path parse caught every error.
func (d *Dispatcher) recoverMismatch(ctx context.Context, entries []Entry, res Result) []Outcome {
	mismatched := MismatchedPaths(res.Stderr)
	if len(mismatched) == 0 {
		return d.failMismatched(entries, res)
	}

	out := make([]Outcome, len(entries))
	var retry []Entry
	retryIdx := make([]int, 0, len(entries))
	renamed := make(map[string]bool)

	for i, e := range entries {
		ext, hit := mismatched[e.MediaPath]
		if !hit {
			retry = append(retry, e)
			retryIdx = append(retryIdx, i)
			continue
		}

		newMedia, newSidecar, err := d.Fix(ctx, e.MediaPath, e.SidecarPath, ext)
		if err != nil {
			out[i] = Outcome{Entry: e, Status: EntryFailed,
				Err: fmt.Errorf("extension fix for %s: %w", e.MediaPath, err)}
			continue
		}

		log.WithFields(log.Fields{
			"from": e.MediaPath,
			"to":   newMedia,
		}).Info("renamed mismatched media file")

		fixed := Entry{MediaPath: newMedia, SidecarPath: newSidecar, Plan: e.Plan}
		retry = append(retry, fixed)
		retryIdx = append(retryIdx, i)
		renamed[newMedia] = true
	}

	for j, o := range d.dispatch(ctx, retry, false) {
		if renamed[o.Entry.MediaPath] && o.Status == EntryMerged {
			o.Status = EntryRenamedAndMerged
		}
		out[retryIdx[j]] = o
	}
	return out
}

// failMismatched is the no-recovery path: implicated entries fail, the
// rest are treated as failed too since the block may have aborted early.
func (d *Dispatcher) failMismatched(entries []Entry, res Result) []Outcome {
	return uniform(entries, EntryFailed,
		fmt.Errorf("%w: file content does not match extension (%s)",
			ErrBatchFailed, firstLine(res.Stderr)))
}

func uniform(entries []Entry, st EntryStatus, err error) []Outcome {
	out := make([]Outcome, len(entries))
	for i, e := range entries {
		out[i] = Outcome{Entry: e, Status: st, Err: err}
	}
	return out
}

func pathSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
