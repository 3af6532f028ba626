// Package schedule holds the pure time arithmetic shared by slot
// computation, the reservation transaction and the work-session guard.
// Booking and rostering must agree on overlap semantics, so this is the
// only place intervals are compared.
package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
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

// IsValid reports whether the interval has positive duration.
func (i Interval) IsValid() bool {
	return i.End.After(i.Start)
}

// Contains reports whether other lies entirely inside i.
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

func (i Interval) String() string {
	return fmt.Sprintf("%s–%s", i.Start.Format(time.RFC3339), i.End.Format(time.RFC3339))
}

// Overlaps reports whether two half-open intervals share any point:
// [s1,e1) and [s2,e2) conflict iff s1 < e2 && s2 < e1. Back-to-back
// intervals (e1 == s2) do not conflict, so a slot ending at 9:00 never
// blocks one starting at 9:00.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && b.Start.Before(a.End)
}

// Entry is an existing allocation checked against a candidate interval.
// Active is false for cancelled allocations, which never conflict.
type Entry struct {
	ID       uuid.UUID
	Interval Interval
	Active   bool
}

// FindConflicts returns the active entries overlapping candidate.
// excludeID skips the entry being edited so updates don't conflict with
// themselves.
func FindConflicts(candidate Interval, existing []Entry, excludeID *uuid.UUID) []Entry {
	var conflicts []Entry
	for _, e := range existing {
		if !e.Active {
			continue
		}
		if excludeID != nil && e.ID == *excludeID {
			continue
		}
		if Overlaps(candidate, e.Interval) {
			conflicts = append(conflicts, e)
		}
	}
	return conflicts
}
