package sidecar

// Disposition says where a media file should live according to its sidecar
// flags. The flags are not mutually exclusive; the priority below decides.
type Disposition int

const (
	DispositionNormal Disposition = iota
	DispositionArchived
	DispositionLocked
	DispositionTrashed
)

// String returns the lowercase label used in logs.
func (d Disposition) String() string {
	switch d {
	case DispositionTrashed:
		return "trashed"
	case DispositionLocked:
		return "locked"
	case DispositionArchived:
		return "archived"
	default:
		return "normal"
	}
}

// Record is one parsed sidecar. It is created by [Parse], may gain albums
// once via directory-level enrichment, and is read-only afterward.
//
// TakenAt and CreatedAt are epoch seconds; zero means absent. Geo values
// are only meaningful when HasGeo is true: a missing or exactly-zero
// latitude or longitude nulls the whole position ("no reliable geo").
type Record struct {
	ExpectedFilename string

	Description string
	People      []string // raw order and casing; normalization happens at synthesis
	Albums      []string

	TakenAt   int64
	CreatedAt int64

	Latitude  float64
	Longitude float64
	Altitude  float64
	HasGeo    bool

	Favorite bool
	Archived bool
	Trashed  bool
	Locked   bool
}

// Disposition resolves the archived/trashed/locked flags into a single
// placement decision, priority trashed > locked > archived > normal.
func (r *Record) Disposition() Disposition {
	switch {
	case r.Trashed:
		return DispositionTrashed
	case r.Locked:
		return DispositionLocked
	case r.Archived:
		return DispositionArchived
	default:
		return DispositionNormal
	}
}
