package merge

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bbcollection-th/takeout-merge/internal/config"
	"github.com/bbcollection-th/takeout-merge/internal/sidecar"
)

// exiftool's timestamp syntax, rendered as UTC wall-clock.
const exifTimeLayout = "2006:01:02 15:04:05"

// Synthesize plans the metadata writes for one media file.
//
// In append mode, scalar tags are written inside a create-only region
// ("wm cg": create tags, create groups, never edit) so existing camera
// metadata survives; the region is closed ("wm wcg") before list
// operations, which must always apply. In overwrite mode, scalars are
// written unconditionally and no write-mode flags are emitted.
//
// List tags use a remove-then-add pair per value. Removing a value that
// is absent is a no-op, so the pair yields exactly-once membership no
// matter what the list already holds, and re-running the same plan never
// duplicates entries.
func Synthesize(rec *sidecar.Record, isVideo bool, mode config.MergeMode) DirectiveList {
	b := &builder{mode: mode}

	if rec.Description != "" {
		b.scalar("ImageDescription", rec.Description)
		b.scalar("XMP-dc:Description", rec.Description)
		b.scalar("IPTC:Caption-Abstract", rec.Description)
		if isVideo {
			b.scalar("QuickTime:Description", rec.Description)
		}
	}

	if rec.TakenAt > 0 {
		taken := formatEpoch(rec.TakenAt)
		b.scalar("DateTimeOriginal", taken)
		b.scalar("CreateDate", taken)
		b.scalar("ModifyDate", taken)
		if isVideo {
			b.scalar("QuickTime:CreateDate", taken)
			b.scalar("QuickTime:ModifyDate", taken)
			b.scalar("MediaCreateDate", taken)
			b.scalar("TrackCreateDate", taken)
		}
	}
	if rec.CreatedAt > 0 {
		b.scalar("XMP-xmp:CreateDate", formatEpoch(rec.CreatedAt))
	}

	if rec.Favorite {
		b.scalar("XMP-xmp:Rating", "5")
	}

	if rec.HasGeo {
		b.scalar("GPSLatitude", formatCoord(rec.Latitude))
		b.scalar("GPSLatitudeRef", ref(rec.Latitude, "N", "S"))
		b.scalar("GPSLongitude", formatCoord(rec.Longitude))
		b.scalar("GPSLongitudeRef", ref(rec.Longitude, "E", "W"))
		b.scalar("GPSAltitude", formatCoord(rec.Altitude))
		b.scalar("GPSAltitudeRef", ref(rec.Altitude, "0", "1"))
		if isVideo {
			b.scalar("QuickTime:GPSCoordinates",
				fmt.Sprintf("%.6f,%.6f,%.6f", rec.Latitude, rec.Longitude, rec.Altitude))
		}
	}

	// List tags: normalized people, plus album-membership keywords.
	people := normalizeAll(rec.People)
	for _, p := range people {
		b.list("XMP-iptcExt:PersonInImage", p)
	}

	keywords := append([]string{}, people...)
	for _, album := range rec.Albums {
		keywords = append(keywords, "Album: "+album)
	}
	for _, kw := range keywords {
		b.list("XMP-dc:Subject", kw)
		b.list("IPTC:Keywords", kw)
	}

	b.closeRegion()
	return b.out
}

// builder accumulates directives and tracks whether a create-only region
// is currently open, emitting the "wm" flags lazily so a plan with no
// scalar writes carries no flags at all.
type builder struct {
	mode config.MergeMode
	out  DirectiveList
	open bool
}

func (b *builder) scalar(tag, value string) {
	if b.mode == config.ModeOverwrite {
		b.out = append(b.out, Directive{Tag: tag, Op: SetUnconditional, Value: value})
		return
	}
	if !b.open {
		b.out = append(b.out, Directive{Tag: "wm", Op: RawFlag, Value: "cg"})
		b.open = true
	}
	b.out = append(b.out, Directive{Tag: tag, Op: SetIfAbsent, Value: value})
}

func (b *builder) list(tag, value string) {
	b.closeRegion()
	b.out = append(b.out,
		Directive{Tag: tag, Op: RemoveValue, Value: value},
		Directive{Tag: tag, Op: AddValue, Value: value},
	)
}

func (b *builder) closeRegion() {
	if b.open {
		b.out = append(b.out, Directive{Tag: "wm", Op: RawFlag, Value: "wcg"})
		b.open = false
	}
}

func normalizeAll(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool)
	for _, n := range names {
		norm := NormalizeName(n)
		if norm == "" || seen[norm] {
			continue
		}
		seen[norm] = true
		out = append(out, norm)
	}
	return out
}

func formatEpoch(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(exifTimeLayout)
}

func formatCoord(v float64) string {
	if v < 0 {
		v = -v
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ref(v float64, pos, neg string) string {
	if v < 0 {
		return neg
	}
	return pos
}
