package sidecar

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Parse decodes one sidecar's raw bytes into a Record. It is a pure
// function of its inputs: no filesystem access, no side effects.
//
// The sidecar path is only used to derive the expected media filename;
// a title that does not equal it exactly (case-sensitive, untrimmed)
// fails with ErrTitleMismatch rather than risking a merge into the
// wrong file.
func Parse(data []byte, sidecarPath string) (*Record, error) {
	base := filepath.Base(sidecarPath)

	expected, err := ExpectedMediaName(base)
	if err != nil {
		return nil, err
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: %s", ErrMalformedJSON, base)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: %s is not a JSON object", ErrMalformedJSON, base)
	}

	title := root.Get("title")
	if !title.Exists() {
		return nil, fmt.Errorf("%w: %s", ErrMissingTitle, base)
	}
	if title.String() != expected {
		return nil, fmt.Errorf("%w: title %q, filename implies %q",
			ErrTitleMismatch, title.String(), expected)
	}

	rec := &Record{
		ExpectedFilename: expected,
		Description:      root.Get("description").String(),
		People:           parsePeople(root.Get("people")),
		Favorite:         parseFavorite(root.Get("favorited")),
		Archived:         root.Get("archived").Bool(),
		Trashed:          root.Get("trashed").Bool(),
		Locked:           root.Get("inLockedFolder").Bool(),
	}

	rec.TakenAt = parseEpoch(root.Get("photoTakenTime.timestamp"))
	rec.CreatedAt = parseEpoch(root.Get("creationTime.timestamp"))

	parseGeo(root, rec)

	return rec, nil
}

// parsePeople accepts entries shaped either as {"name": "..."} or as
// {"person": {"name": "..."}}. Whitespace is trimmed, empties dropped, and
// duplicates removed case-sensitively. Casing normalization is deliberately
// left to the merge synthesizer so the raw export survives for diagnostics.
func parsePeople(people gjson.Result) []string {
	if !people.IsArray() {
		return nil
	}

	var out []string
	seen := make(map[string]bool)

	people.ForEach(func(_, entry gjson.Result) bool {
		name := entry.Get("name")
		if !name.Exists() {
			name = entry.Get("person.name")
		}
		s := strings.TrimSpace(name.String())
		if s == "" || seen[s] {
			return true
		}
		seen[s] = true
		out = append(out, s)
		return true
	})
	return out
}

// parseEpoch reads an integer-like timestamp: Takeout writes epoch seconds
// as a decimal string, but a bare number is accepted too. Anything else is
// treated as absent rather than failing the whole parse.
func parseEpoch(ts gjson.Result) int64 {
	switch ts.Type {
	case gjson.String:
		n, err := strconv.ParseInt(strings.TrimSpace(ts.Str), 10, 64)
		if err != nil || n <= 0 {
			return 0
		}
		return n
	case gjson.Number:
		if n := ts.Int(); n > 0 {
			return n
		}
	}
	return 0
}

// parseGeo reads the primary geoData block, falling back to geoDataExif
// when the primary lacks a latitude. A missing or exactly-zero latitude
// or longitude nulls the position entirely: Takeout emits 0.0/0.0 for
// photos with no reliable location.
func parseGeo(root gjson.Result, rec *Record) {
	geo := root.Get("geoData")
	if !geo.Get("latitude").Exists() {
		geo = root.Get("geoDataExif")
	}

	lat := geo.Get("latitude")
	lon := geo.Get("longitude")
	if !lat.Exists() || !lon.Exists() || lat.Float() == 0 || lon.Float() == 0 {
		return
	}

	rec.Latitude = lat.Float()
	rec.Longitude = lon.Float()
	rec.Altitude = geo.Get("altitude").Float()
	rec.HasGeo = true
}

// parseFavorite accepts both the bare-boolean and {"value": bool} shapes
// seen across Takeout export generations.
func parseFavorite(fav gjson.Result) bool {
	switch fav.Type {
	case gjson.True:
		return true
	case gjson.JSON:
		return fav.Get("value").Bool()
	}
	return false
}

// AlbumTitle extracts the album title from a directory-level metadata.json
// descriptor. Returns "" when the payload is not an album descriptor.
func AlbumTitle(data []byte) string {
	if !gjson.ValidBytes(data) {
		return ""
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return ""
	}
	return strings.TrimSpace(root.Get("title").String())
}
