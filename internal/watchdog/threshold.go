package watchdog

import (
	"math"
	"time"
)

// Cutoff returns the staleness boundary for the given SLA window. A checkpoint
// is overdue when its last-cleaned timestamp strictly precedes the cutoff;
// a checkpoint serviced exactly at the cutoff is still compliant.
func Cutoff(now time.Time, maxGap time.Duration) time.Time {
	return now.Add(-maxGap)
}

// IsOverdue reports whether lastCleaned breaches the SLA window at instant now.
// The zero time counts as overdue: a never-serviced checkpoint has been waiting
// since before any cutoff.
func IsOverdue(now, lastCleaned time.Time, maxGap time.Duration) bool {
	return lastCleaned.Before(Cutoff(now, maxGap))
}

// HoursOverdue returns the elapsed hours since the last verified service,
// rounded to two decimals. Clamped to zero for never-serviced checkpoints
// (there is no meaningful gap to report) and for clocks that disagree.
func HoursOverdue(now, lastCleaned time.Time) float64 {
	if lastCleaned.IsZero() {
		return 0
	}

	hours := now.Sub(lastCleaned).Hours()
	if hours < 0 {
		return 0
	}

	return math.Round(hours*100) / 100
}
