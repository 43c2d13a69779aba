package pipeline

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"
)

// RunStats tracks aggregate counters across one merge run.
type RunStats struct {
	Total            int // sidecars discovered as pending
	Current          int // 1-based index of the sidecar being handled
	Merged           int // metadata written cleanly
	ConditionSkipped int // merged, but existing values were kept
	Warned           int // merged with unsupported-tag warnings
	Renamed          int // merged after an extension fix
	NoMetadata       int // sidecar carried nothing mergeable
	AlreadyProcessed int // marked by an earlier run
	Unsupported      int // media format exiftool cannot write
	Failed           int

	// MergedBytes totals the size of every media file written to.
	MergedBytes int64

	// FailureReasons is a histogram keyed by a short reason label, so the
	// summary can say "12 × title mismatch" instead of 12 identical lines.
	FailureReasons map[string]int

	Start time.Time
}

// NewRunStats starts the clock.
func NewRunStats() *RunStats {
	return &RunStats{FailureReasons: make(map[string]int), Start: time.Now()}
}

// RecordFailure bumps the failure counter and its reason bucket.
func (s *RunStats) RecordFailure(reason string) {
	s.Failed++
	s.FailureReasons[reason]++
}

// MergedTotal is every outcome that counts as a successful merge.
func (s *RunStats) MergedTotal() int {
	return s.Merged + s.ConditionSkipped + s.Warned + s.Renamed
}

// LogSummary writes the end-of-run report.
func (s *RunStats) LogSummary() {
	elapsed := time.Since(s.Start).Round(time.Second)

	log.Infof("Done in %s: %s sidecars, %s merged (%s of media), %s failed",
		elapsed,
		humanize.Comma(int64(s.Total)),
		humanize.Comma(int64(s.MergedTotal())),
		humanize.Bytes(uint64(s.MergedBytes)),
		humanize.Comma(int64(s.Failed)))

	if s.ConditionSkipped > 0 {
		log.Infof("  %d merged with existing values kept", s.ConditionSkipped)
	}
	if s.Warned > 0 {
		log.Infof("  %d merged with unsupported-tag warnings", s.Warned)
	}
	if s.Renamed > 0 {
		log.Infof("  %d required an extension fix first", s.Renamed)
	}
	if s.NoMetadata > 0 {
		log.Infof("  %d sidecars had no mergeable metadata", s.NoMetadata)
	}
	if s.Unsupported > 0 {
		log.Infof("  %d media files in formats exiftool cannot write", s.Unsupported)
	}
	if s.AlreadyProcessed > 0 {
		log.Infof("  %d already processed by an earlier run", s.AlreadyProcessed)
	}

	for _, reason := range sortedReasons(s.FailureReasons) {
		log.Warnf("  %d × %s", s.FailureReasons[reason], reason)
	}
}

func sortedReasons(h map[string]int) []string {
	reasons := make([]string, 0, len(h))
	for r := range h {
		reasons = append(reasons, r)
	}
	// Largest bucket first; ties alphabetical.
	sort.Slice(reasons, func(i, j int) bool {
		if h[reasons[i]] != h[reasons[j]] {
			return h[reasons[i]] > h[reasons[j]]
		}
		return reasons[i] < reasons[j]
	})
	return reasons
}
