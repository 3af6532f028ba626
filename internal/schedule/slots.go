package schedule

import (
	"fmt"
	"sort"
	"time"
)

// ErrInvalidDuration is returned when a service duration or granularity
// is zero or negative.
var ErrInvalidDuration = fmt.Errorf("schedule: duration must be positive")

// ComputeSlots turns a doctor's working intervals, the already-booked
// intervals and a service duration into the ordered list of bookable
// slots. Candidates step through each working interval in granularity
// increments from the interval start; a candidate survives only if it
// fits entirely inside the working interval and overlaps no booked
// interval. A granularity of zero defaults to the service duration.
func ComputeSlots(working []Interval, duration time.Duration, booked []Interval, granularity time.Duration) ([]Interval, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if granularity == 0 {
		granularity = duration
	}
	if granularity < 0 {
		return nil, ErrInvalidDuration
	}

	entries := make([]Entry, 0, len(booked))
	for _, b := range booked {
		entries = append(entries, Entry{Interval: b, Active: true})
	}

	ordered := make([]Interval, len(working))
	copy(ordered, working)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].Start.Before(ordered[j].Start)
	})

	var slots []Interval
	for _, w := range ordered {
		if !w.IsValid() {
			continue
		}
		for point := w.Start; ; point = point.Add(granularity) {
			candidate := Interval{Start: point, End: point.Add(duration)}
			if candidate.End.After(w.End) {
				break
			}
			if len(FindConflicts(candidate, entries, nil)) == 0 {
				slots = append(slots, candidate)
			}
		}
	}
	return slots, nil
}
