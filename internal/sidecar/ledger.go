package sidecar

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
)

// The processed ledger is the sidecar filename itself: a "merged_" prefix
// means the metadata has been applied. Encoding state in the name (instead
// of a separate index) survives crashes for free — a rename either happened
// or it didn't, and a later run only needs to look at the directory.

// IsProcessed reports whether the sidecar at path already carries the
// processed marker.
func IsProcessed(path string) bool {
	return strings.HasPrefix(filepath.Base(path), MarkerPrefix)
}

// MarkProcessed renames the sidecar to carry the processed marker and
// returns the marked path. Marking an already-marked sidecar is a no-op
// success. Callers must only invoke this after a merge outcome that counts
// as applied; a failed merge leaves the sidecar unmarked so the next run
// retries it.
func MarkProcessed(path string) (string, error) {
	dir, base := filepath.Dir(path), filepath.Base(path)
	if strings.HasPrefix(base, MarkerPrefix) {
		return path, nil
	}

	marked := filepath.Join(dir, MarkerPrefix+base)
	if _, err := os.Lstat(marked); err == nil {
		return "", fmt.Errorf("%w: %s already exists", ErrMarkFailed, marked)
	}
	if err := os.Rename(path, marked); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMarkFailed, err)
	}
	return marked, nil
}

// Unmark reverses a marker rename, restoring the sidecar's original name.
// Unmarking an unmarked sidecar is a no-op success.
func Unmark(path string) (string, error) {
	dir, base := filepath.Dir(path), filepath.Base(path)
	if !strings.HasPrefix(base, MarkerPrefix) {
		return path, nil
	}

	orig := filepath.Join(dir, strings.TrimPrefix(base, MarkerPrefix))
	if err := os.Rename(path, orig); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMarkFailed, err)
	}
	return orig, nil
}

// EnumerateProcessed walks root and returns every marked sidecar, sorted
// for deterministic script generation. The result reflects only current
// on-disk state, never an in-memory log, so it stays correct when invoked
// in a later, separate run.
func EnumerateProcessed(root string) ([]string, error) {
	var processed []string

	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			base := filepath.Base(path)
			if strings.HasPrefix(base, MarkerPrefix) && strings.HasSuffix(base, ".json") {
				processed = append(processed, path)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(processed)
	return processed, nil
}
