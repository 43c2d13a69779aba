package fixext

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/djherbis/times"
	log "github.com/sirupsen/logrus"

	"github.com/bbcollection-th/takeout-merge/internal/sidecar"
)

// ErrFixFailed marks any failure to complete an extension fix, whether
// rolled back cleanly or not. Match with errors.Is; the Result's phase
// says which of the two it was.
var ErrFixFailed = errors.New("extension fix failed")

// Phase tracks how far a rename has progressed. The resolver mutates the
// filesystem in small steps so a failure at any point can be undone; the
// phase in the returned Result says which paths are now live.
type Phase int

const (
	// PhaseStable: nothing was changed (no-op or failure before the first
	// mutation).
	PhaseStable Phase = iota

	// PhaseRenamed: media file carries the corrected extension.
	PhaseRenamed

	// PhaseRetitled: a new sidecar with the corrected title exists
	// alongside the old one.
	PhaseRetitled

	// PhaseCommitted: old sidecar removed; the rename is complete.
	PhaseCommitted

	// PhaseRollingBack: an intermediate failure is being undone.
	PhaseRollingBack

	// PhaseRolledBack: the undo succeeded; original paths are live again.
	PhaseRolledBack

	// PhaseInconsistent: the undo itself failed. The media file has the
	// new name but the sidecar is the old one; manual repair is needed.
	PhaseInconsistent
)

func (p Phase) String() string {
	switch p {
	case PhaseStable:
		return "stable"
	case PhaseRenamed:
		return "renamed"
	case PhaseRetitled:
		return "retitled"
	case PhaseCommitted:
		return "committed"
	case PhaseRollingBack:
		return "rolling-back"
	case PhaseRolledBack:
		return "rolled-back"
	default:
		return "inconsistent"
	}
}

// Result reports the final phase and the paths that exist on disk after
// the attempt, whatever it ended in.
type Result struct {
	Phase       Phase
	MediaPath   string
	SidecarPath string
}

// Resolver performs the rename with injectable filesystem operations so
// tests can force failures at each step.
type Resolver struct {
	rename    func(oldpath, newpath string) error
	writeFile func(name string, data []byte, perm os.FileMode) error
	remove    func(name string) error
}

// NewResolver returns a resolver backed by the real filesystem.
func NewResolver() *Resolver {
	return &Resolver{
		rename:    os.Rename,
		writeFile: os.WriteFile,
		remove:    os.Remove,
	}
}

// Fix renames mediaPath to carry detectedExt and rewrites its sidecar to
// match: new sidecar filename, embedded title updated, modification time
// preserved. On intermediate failure everything is rolled back; only a
// failed rollback leaves the tree inconsistent, and the Result then names
// exactly which mixed pair of paths survived.
func (r *Resolver) Fix(mediaPath, sidecarPath, detectedExt string) (Result, error) {
	stable := Result{Phase: PhaseStable, MediaPath: mediaPath, SidecarPath: sidecarPath}

	detectedExt = Canonical(detectedExt)
	curExt := Canonical(filepath.Ext(mediaPath))
	if detectedExt == "" || detectedExt == curExt {
		return stable, nil
	}

	newMediaBase := strings.TrimSuffix(filepath.Base(mediaPath), filepath.Ext(mediaPath)) + "." + detectedExt
	newMediaPath := filepath.Join(filepath.Dir(mediaPath), newMediaBase)
	newSidecarPath := filepath.Join(filepath.Dir(sidecarPath),
		sidecar.NameFor(newMediaBase, sidecar.IsLongForm(sidecarPath)))

	// Everything needed for the new sidecar is prepared before the first
	// mutation, so a read problem cannot strand a half-done rename.
	retitled, err := retitleSidecar(sidecarPath, newMediaBase)
	if err != nil {
		return stable, fmt.Errorf("%w: %v", ErrFixFailed, err)
	}
	mtime, atime := sidecarTimes(sidecarPath)

	if err := r.rename(mediaPath, newMediaPath); err != nil {
		return stable, fmt.Errorf("%w: rename media: %v", ErrFixFailed, err)
	}

	if err := r.writeFile(newSidecarPath, retitled, 0o644); err != nil {
		return r.rollback(mediaPath, newMediaPath, newSidecarPath, sidecarPath,
			fmt.Errorf("write retitled sidecar: %w", err))
	}
	if !mtime.IsZero() {
		// Preservation only; the sidecar's own mtime is informational.
		_ = os.Chtimes(newSidecarPath, atime, mtime)
	}

	if err := r.remove(sidecarPath); err != nil {
		return r.rollback(mediaPath, newMediaPath, newSidecarPath, sidecarPath,
			fmt.Errorf("remove old sidecar: %w", err))
	}

	log.WithFields(log.Fields{
		"media":   newMediaPath,
		"sidecar": newSidecarPath,
	}).Debug("extension corrected")
	return Result{Phase: PhaseCommitted, MediaPath: newMediaPath, SidecarPath: newSidecarPath}, nil
}

// rollback undoes the steps taken so far, newest first. A failure here is
// the one case that cannot be hidden: the media file keeps its new name
// while the old sidecar stays, and the caller gets that exact pairing.
func (r *Resolver) rollback(origMedia, newMedia, newSidecar, origSidecar string, cause error) (Result, error) {
	log.WithFields(log.Fields{
		"phase": PhaseRollingBack.String(),
		"cause": cause,
	}).Warn("rolling back extension fix")

	// A failed write can still leave a partial file, so removal is always
	// attempted; a missing file is the expected case, not a problem.
	if err := r.remove(newSidecar); err != nil && !os.IsNotExist(err) {
		log.WithField("path", newSidecar).Warn("could not remove retitled sidecar during rollback")
	}

	if err := r.rename(newMedia, origMedia); err != nil {
		return Result{Phase: PhaseInconsistent, MediaPath: newMedia, SidecarPath: origSidecar},
			fmt.Errorf("%w: rollback failed after %v: %v", ErrFixFailed, cause, err)
	}

	return Result{Phase: PhaseRolledBack, MediaPath: origMedia, SidecarPath: origSidecar},
		fmt.Errorf("%w: %v", ErrFixFailed, cause)
}

// retitleSidecar loads the sidecar JSON and rewrites its title to the new
// media filename, leaving every other field untouched.
func retitleSidecar(sidecarPath, newTitle string) ([]byte, error) {
	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		return nil, fmt.Errorf("read sidecar: %w", err)
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode sidecar: %w", err)
	}
	doc["title"] = newTitle

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode sidecar: %w", err)
	}
	return out, nil
}

func sidecarTimes(path string) (mtime, atime time.Time) {
	ts, err := times.Stat(path)
	if err != nil {
		return time.Time{}, time.Time{}
	}
	return ts.ModTime(), ts.AccessTime()
}
