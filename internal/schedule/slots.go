// Package schedule computes free time slots from busy calendar intervals.
package schedule

import (
	"fmt"
	"sort"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Duration returns End - Start.
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// IsEmpty reports whether the interval covers no time (zero-length or inverted).
func (i Interval) IsEmpty() bool {
	return !i.Start.Before(i.End)
}

// Slot is a free interval together with its duration.
type Slot struct {
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Duration time.Duration `json:"duration"`
}

// Validate checks the preconditions callers must satisfy before calling
// FindFreeSlots: a non-inverted window and a strictly positive minimum
// duration. FindFreeSlots itself assumes these hold.
func Validate(window Interval, minDuration time.Duration) error {
	if window.Start.After(window.End) {
		return fmt.Errorf("window start %s is after end %s",
			window.Start.Format(time.RFC3339), window.End.Format(time.RFC3339))
	}
	if minDuration <= 0 {
		return fmt.Errorf("minimum duration must be positive, got %s", minDuration)
	}
	return nil
}

// FindFreeSlots returns the gaps within window not covered by any busy
// interval, keeping only gaps of at least minDuration. Busy intervals may be
// unsorted, overlapping, zero-length, or extend outside the window; they are
// clipped to the window and swept with a monotonic cursor, so no explicit
// merge pass is needed. The returned slots are disjoint, chronologically
// ordered, and together with the busy time exactly partition the window.
func FindFreeSlots(busy []Interval, window Interval, minDuration time.Duration) []Slot {
	clipped := make([]Interval, 0, len(busy))
	for _, b := range busy {
		if b.Start.Before(window.Start) {
			b.Start = window.Start
		}
		if b.End.After(window.End) {
			b.End = window.End
		}
		if b.IsEmpty() {
			continue
		}
		clipped = append(clipped, b)
	}

	// Start ascending, ties by end ascending. Stable ordering keeps the
	// output deterministic under input permutation.
	sort.SliceStable(clipped, func(i, j int) bool {
		if clipped[i].Start.Equal(clipped[j].Start) {
			return clipped[i].End.Before(clipped[j].End)
		}
		return clipped[i].Start.Before(clipped[j].Start)
	})

	var slots []Slot
	cursor := window.Start
	emit := func(start, end time.Time) {
		if d := end.Sub(start); d >= minDuration {
			slots = append(slots, Slot{Start: start, End: end, Duration: d})
		}
	}

	for _, b := range clipped {
		if cursor.Before(b.Start) {
			emit(cursor, b.Start)
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}
	if cursor.Before(window.End) {
		emit(cursor, window.End)
	}

	return slots
}
