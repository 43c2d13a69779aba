package pipeline

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"

	"github.com/bbcollection-th/takeout-merge/internal/sidecar"
)

// Discovery is the result of one scan of a Takeout tree.
type Discovery struct {
	// Sidecars are unprocessed media sidecars, sorted for deterministic
	// processing order.
	Sidecars []string

	// AlreadyProcessed counts sidecars skipped because they carry the
	// processed marker from an earlier run.
	AlreadyProcessed int
}

// Discover walks root and collects every media sidecar that still needs
// merging. Album descriptors are not collected here; the runner loads them
// lazily per directory.
func Discover(root string) (*Discovery, error) {
	d := &Discovery{}

	err := godirwalk.Walk(root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			base := filepath.Base(path)
			if !strings.HasSuffix(base, ".json") {
				return nil
			}
			if strings.HasPrefix(base, sidecar.MarkerPrefix) {
				d.AlreadyProcessed++
				return nil
			}
			if sidecar.IsSidecarName(base) {
				d.Sidecars = append(d.Sidecars, path)
			}
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(d.Sidecars)
	return d, nil
}

// Video container extensions, for the tag fan-out decision.
var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".m4v": true, ".avi": true,
	".mkv": true, ".webm": true, ".3gp": true, ".mpg": true,
	".mpeg": true, ".wmv": true, ".mts": true, ".m2ts": true,
}

// IsVideo reports whether the media filename looks like a video container.
func IsVideo(mediaName string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(mediaName))]
}
