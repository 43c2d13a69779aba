package sidecar

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bbcollection-th/takeout-merge/internal/config"
)

// Recovery scripts are generated from on-disk state alone (the marked
// sidecars found by EnumerateProcessed), so they can be regenerated at any
// time, including from a fresh process after a crash. The merge tool never
// deletes a sidecar itself; the cleanup script is the user's explicit
// opt-in.

const (
	cleanupBaseName  = "takeout-merge-cleanup"
	rollbackBaseName = "takeout-merge-rollback"
)

// GenerateCleanup renders a script that deletes every marked sidecar.
func GenerateCleanup(processed []string, format config.ScriptFormat) string {
	var b strings.Builder
	writeHeader(&b, format, "Deletes sidecar files whose metadata has been merged.")
	for _, p := range processed {
		switch format {
		case config.ScriptBatch:
			fmt.Fprintf(&b, "del %s\r\n", batchQuote(filepath.FromSlash(p)))
		default:
			fmt.Fprintf(&b, "rm -- %s\n", shellQuote(p))
		}
	}
	return b.String()
}

// GenerateRollback renders a script that strips the processed marker from
// every marked sidecar, returning the tree to its pre-merge bookkeeping
// state. Media file contents are not touched; rerunning the merge after a
// rollback re-applies the same metadata.
func GenerateRollback(processed []string, format config.ScriptFormat) string {
	var b strings.Builder
	writeHeader(&b, format, "Restores original sidecar filenames so the merge can be re-run.")
	for _, p := range processed {
		orig := strings.TrimPrefix(filepath.Base(p), MarkerPrefix)
		switch format {
		case config.ScriptBatch:
			fmt.Fprintf(&b, "ren %s %s\r\n", batchQuote(filepath.FromSlash(p)), batchQuote(orig))
		default:
			fmt.Fprintf(&b, "mv -- %s %s\n",
				shellQuote(p), shellQuote(filepath.Join(filepath.Dir(p), orig)))
		}
	}
	return b.String()
}

// WriteRecoveryScripts enumerates root and writes both scripts into dir,
// returning the paths written. Existing scripts are overwritten; their
// content is a pure function of the tree, so regeneration is always safe.
func WriteRecoveryScripts(root, dir string, format config.ScriptFormat) ([]string, error) {
	processed, err := EnumerateProcessed(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScriptGeneration, err)
	}

	ext, perm := ".sh", os.FileMode(0o755)
	if format == config.ScriptBatch {
		ext, perm = ".bat", 0o644
	}

	paths := make([]string, 0, 2)
	for _, s := range []struct {
		name    string
		content string
	}{
		{cleanupBaseName + ext, GenerateCleanup(processed, format)},
		{rollbackBaseName + ext, GenerateRollback(processed, format)},
	} {
		p := filepath.Join(dir, s.name)
		if err := os.WriteFile(p, []byte(s.content), perm); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrScriptGeneration, err)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func writeHeader(b *strings.Builder, format config.ScriptFormat, purpose string) {
	if format == config.ScriptBatch {
		fmt.Fprintf(b, "@echo off\r\nrem %s\r\nrem Generated by takeout-merge; review before running.\r\n", purpose)
		return
	}
	fmt.Fprintf(b, "#!/bin/sh\n# %s\n# Generated by takeout-merge; review before running.\nset -e\n", purpose)
}

// shellQuote wraps a path in single quotes, escaping embedded single
// quotes the POSIX way ('\'' splice).
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func batchQuote(s string) string {
	return `"` + s + `"`
}
