// Package sidecar handles Google Photos Takeout JSON sidecar files: the
// naming convention tying a sidecar to its media file, parsing the JSON
// payload into a typed record, and the processed-marker ledger that makes
// reruns safe.
package sidecar

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

const (
	// SupplementalSuffix is the long-form infix Takeout inserts between the
	// media name and ".json" in current exports. Legacy exports use a bare
	// "<media>.json" name.
	SupplementalSuffix = ".supplemental-metadata"

	// MarkerPrefix is the reversible filename prefix recording that a
	// sidecar's metadata has been merged into its media file. The prefix
	// on disk is the single source of truth for processed state.
	MarkerPrefix = "merged_"

	// AlbumMetaName is the per-directory album descriptor generated by
	// Takeout alongside media sidecars. It is never a media sidecar.
	AlbumMetaName = "metadata.json"
)

// Duplicate counters: media "IMG_0001(1).jpg" gets the sidecar
// "IMG_0001.jpg.supplemental-metadata(1).json" — the "(1)" migrates from
// before the media extension to the sidecar name's tail.
var dupCounterRe = regexp.MustCompile(`\(([0-9]+)\)$`)

// IsSidecarName reports whether base looks like a media sidecar filename.
// The album descriptor and already-marked sidecars are not media sidecars
// from the discovery walk's point of view.
func IsSidecarName(base string) bool {
	if base == AlbumMetaName || strings.HasPrefix(base, MarkerPrefix) {
		return false
	}
	name, err := ExpectedMediaName(base)
	return err == nil && name != ""
}

// ExpectedMediaName derives the media filename a sidecar belongs to from
// the sidecar's own name. This derived name must equal the JSON's embedded
// title exactly; the comparison is the primary guard against applying
// metadata to the wrong file.
func ExpectedMediaName(sidecarName string) (string, error) {
	base := filepath.Base(sidecarName)
	if !strings.HasSuffix(base, ".json") {
		return "", fmt.Errorf("%w: %s", ErrUnrecognizedName, base)
	}
	stem := strings.TrimSuffix(base, ".json")

	dup := ""
	if m := dupCounterRe.FindStringSubmatch(stem); m != nil {
		dup = m[0]
		stem = strings.TrimSuffix(stem, m[0])
	}
	stem = strings.TrimSuffix(stem, SupplementalSuffix)

	if stem == "" || filepath.Ext(stem) == "" {
		return "", fmt.Errorf("%w: %s", ErrUnrecognizedName, base)
	}

	if dup != "" {
		ext := filepath.Ext(stem)
		return strings.TrimSuffix(stem, ext) + dup + ext, nil
	}
	return stem, nil
}

// IsLongForm reports whether the sidecar name uses the supplemental-metadata
// form. Used when rewriting a sidecar so the new name keeps the same form.
func IsLongForm(sidecarName string) bool {
	return strings.Contains(filepath.Base(sidecarName), SupplementalSuffix)
}

// NameFor builds the sidecar filename for a media filename, moving any
// "(N)" duplicate counter from the media stem to the sidecar tail.
func NameFor(mediaName string, longForm bool) string {
	ext := filepath.Ext(mediaName)
	stem := strings.TrimSuffix(mediaName, ext)

	dup := ""
	if m := dupCounterRe.FindStringSubmatch(stem); m != nil {
		dup = m[0]
		stem = strings.TrimSuffix(stem, m[0])
	}

	name := stem + ext
	if longForm {
		name += SupplementalSuffix
	}
	return name + dup + ".json"
}
