package exiftool

import (
	"context"
	"errors"
	"os/exec"
	"regexp"
	"strings"
)

// BatchStatus classifies one whole invocation. Partial statuses mean the
// tool ran to completion and the writes that could apply did apply; the
// dispatcher maps them onto per-entry outcomes.
type BatchStatus int

const (
	// BatchSuccess: clean run, every entry written.
	BatchSuccess BatchStatus = iota

	// BatchPartialConditionFailure: some files were left unchanged because
	// their create-only writes found existing values. Expected in append
	// mode; the entries still count as merged.
	BatchPartialConditionFailure

	// BatchPartialUnsupportedField: one or more tags are not writable for
	// a file's format (e.g. IPTC on PNG). Remaining tags were written.
	BatchPartialUnsupportedField

	// BatchFormatMismatch: at least one file's content does not match its
	// extension and the tool refused to write it. Recoverable by renaming.
	BatchFormatMismatch

	// BatchHardFailure: the invocation failed in a way that leaves entry
	// state unknown (tool crash, timeout, unparseable output).
	BatchHardFailure

	// BatchToolNotFound: the exiftool binary could not be run at all.
	BatchToolNotFound
)

func (s BatchStatus) String() string {
	switch s {
	case BatchSuccess:
		return "success"
	case BatchPartialConditionFailure:
		return "partial-condition"
	case BatchPartialUnsupportedField:
		return "partial-unsupported"
	case BatchFormatMismatch:
		return "format-mismatch"
	case BatchToolNotFound:
		return "tool-not-found"
	default:
		return "hard-failure"
	}
}

// Pre-compiled regexes for classifying exiftool output. Checked in order
// by [Classify]; the most severe recoverable category wins.
var (
	// "Error: Not a valid JPG (looks more like a PNG) - /path/img.jpg"
	reFormatMismatch = regexp.MustCompile(
		`(?m)^Error: .*\(looks more like a (\w+)\) - (.+)$`)

	// "Warning: Tag 'IPTC:Keywords' is not defined - /path/img.png"
	// "Warning: Sorry, XMP-dc:Subject doesn't exist or isn't writable - ..."
	reUnsupportedField = regexp.MustCompile(
		`(?mi)^Warning: .*(tag '[^']*' is not defined|doesn't exist or isn't writable)`)

	// Stdout summary when create-only writes found existing values:
	// "    1 image files unchanged"
	reUnchanged = regexp.MustCompile(`(?m)^\s*[1-9]\d* image files unchanged$`)

	// Character-set trouble in values or filenames.
	reEncoding = regexp.MustCompile(
		`(?mi)^(?:Error|Warning): .*(malformed utf-8|invalid.*character|encoding)`)

	// Stderr line tail carrying the affected path.
	rePathTail = regexp.MustCompile(`(?m)^(?:Error|Warning): .* - (.+)$`)
)

// MatchEncodingIssue reports whether stderr contains a character-encoding
// complaint. Used to pick a clearer failure reason for the summary.
func MatchEncodingIssue(stderr string) bool {
	return reEncoding.MatchString(stderr)
}

// Classify maps an invocation result onto a batch status.
func Classify(res Result) BatchStatus {
	switch {
	case errors.Is(res.Err, exec.ErrNotFound):
		return BatchToolNotFound
	case errors.Is(res.Err, context.DeadlineExceeded) || errors.Is(res.Err, context.Canceled):
		return BatchHardFailure
	case reFormatMismatch.MatchString(res.Stderr):
		return BatchFormatMismatch
	}

	if res.Err != nil {
		// Warnings alone never make exiftool exit non-zero, so a failed
		// exit carries a real error even when warnings are present. Entry
		// state is unknown and nothing may be marked processed.
		return BatchHardFailure
	}

	switch {
	case reUnsupportedField.MatchString(res.Stderr):
		return BatchPartialUnsupportedField
	case reUnchanged.MatchString(res.Stdout):
		return BatchPartialConditionFailure
	default:
		return BatchSuccess
	}
}

// MismatchedPaths returns the media paths named by format-mismatch errors,
// with the extension the tool thinks the content really is. An empty map
// on a mismatch-classified result means the paths could not be parsed and
// the caller must treat every entry as suspect.
func MismatchedPaths(stderr string) map[string]string {
	out := make(map[string]string)
	for _, m := range reFormatMismatch.FindAllStringSubmatch(stderr, -1) {
		out[strings.TrimSpace(m[2])] = strings.ToLower(m[1])
	}
	return out
}

// AffectedPaths extracts every path named on a warning or error line.
func AffectedPaths(stderr string) []string {
	var out []string
	for _, m := range rePathTail.FindAllStringSubmatch(stderr, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	return out
}
