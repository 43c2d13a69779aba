// Package merge turns a parsed sidecar record into the ordered list of
// metadata write directives for one media file. Directives are an abstract
// plan; rendering them into exiftool argument syntax happens at the
// dispatch boundary.
package merge

// Op is the kind of write a directive performs.
type Op int

const (
	// SetIfAbsent writes a scalar tag only when the target has no value.
	// Valid only inside a conditional region (see RawFlag "wm").
	SetIfAbsent Op = iota

	// SetUnconditional writes a scalar tag, replacing any existing value.
	SetUnconditional

	// RemoveValue removes one value from a list tag if present. Paired
	// with a following AddValue for the same tag and value, this yields
	// add-if-missing semantics regardless of the list's current content.
	RemoveValue

	// AddValue appends one value to a list tag.
	AddValue

	// RawFlag is a bare tool flag, not a tag write. Tag holds the flag
	// name without its leading dash, Value its argument.
	RawFlag
)

func (o Op) String() string {
	switch o {
	case SetIfAbsent:
		return "set-if-absent"
	case SetUnconditional:
		return "set"
	case RemoveValue:
		return "remove-value"
	case AddValue:
		return "add-value"
	case RawFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// Directive is one planned metadata operation.
type Directive struct {
	Tag   string
	Op    Op
	Value string
}

// DirectiveList is the ordered plan for one media file. Order matters:
// RawFlag write-mode directives scope the conditional behavior of the
// SetIfAbsent entries between them, and every RemoveValue must directly
// precede its matching AddValue.
type DirectiveList []Directive

// HasTagWrites reports whether the list contains any actual tag write,
// as opposed to only mode flags. An all-flags list means the sidecar
// carried no mergeable metadata and the file can be skipped.
func (l DirectiveList) HasTagWrites() bool {
	for _, d := range l {
		if d.Op != RawFlag {
			return true
		}
	}
	return false
}
