package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func ivl(t *testing.T, start, end string) Interval {
	t.Helper()
	s, err := time.Parse("15:04", start)
	if err != nil {
		t.Fatal(err)
	}
	e, err := time.Parse("15:04", end)
	if err != nil {
		t.Fatal(err)
	}
	return Interval{Start: s, End: e}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"identical", ivl(t, "09:00", "10:00"), ivl(t, "09:00", "10:00"), true},
		{"contained", ivl(t, "09:00", "10:00"), ivl(t, "09:15", "09:45"), true},
		{"partial front", ivl(t, "09:00", "10:00"), ivl(t, "08:30", "09:30"), true},
		{"partial back", ivl(t, "09:00", "10:00"), ivl(t, "09:30", "10:30"), true},
		{"back to back", ivl(t, "09:00", "09:30"), ivl(t, "09:30", "10:00"), false},
		{"disjoint", ivl(t, "09:00", "09:30"), ivl(t, "11:00", "11:30"), false},
		{"single shared minute", ivl(t, "09:00", "09:31"), ivl(t, "09:30", "10:00"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a, tt.b))
			assert.Equal(t, tt.want, Overlaps(tt.b, tt.a), "overlap must be symmetric")
		})
	}
}

func TestOverlapsSelf(t *testing.T) {
	a := ivl(t, "09:00", "09:30")
	assert.True(t, Overlaps(a, a), "a positive-duration interval overlaps itself")

	empty := ivl(t, "09:00", "09:00")
	assert.False(t, Overlaps(empty, empty), "an empty interval has no points to share")
}

func TestFindConflicts(t *testing.T) {
	existing := []Entry{
		{ID: uuid.New(), Interval: ivl(t, "09:00", "09:30"), Active: true},
		{ID: uuid.New(), Interval: ivl(t, "10:00", "10:30"), Active: true},
		{ID: uuid.New(), Interval: ivl(t, "09:00", "12:00"), Active: false},
	}

	conflicts := FindConflicts(ivl(t, "09:15", "09:45"), existing, nil)
	assert.Len(t, conflicts, 1)
	assert.Equal(t, existing[0].ID, conflicts[0].ID)

	conflicts = FindConflicts(ivl(t, "09:30", "10:00"), existing, nil)
	assert.Empty(t, conflicts, "cancelled entries and back-to-back neighbours never conflict")
}

func TestFindConflictsExcludesEditedEntry(t *testing.T) {
	own := Entry{ID: uuid.New(), Interval: ivl(t, "09:00", "12:00"), Active: true}
	existing := []Entry{own}

	assert.Len(t, FindConflicts(own.Interval, existing, nil), 1)
	assert.Empty(t, FindConflicts(own.Interval, existing, &own.ID),
		"re-saving the same range must not conflict with itself")
}
