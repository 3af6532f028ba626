package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSlotsRejectsInvalidDuration(t *testing.T) {
	working := []Interval{ivl(t, "09:00", "11:00")}

	_, err := ComputeSlots(working, 0, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)

	_, err = ComputeSlots(working, -30*time.Minute, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestComputeSlotsFillsWorkingInterval(t *testing.T) {
	working := []Interval{ivl(t, "09:00", "11:00")}

	slots, err := ComputeSlots(working, 30*time.Minute, nil, 0)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	assert.Equal(t, ivl(t, "09:00", "09:30"), slots[0])
	assert.Equal(t, ivl(t, "10:30", "11:00"), slots[3])
	for _, s := range slots {
		assert.True(t, working[0].Contains(s), "slot %v escapes the working interval", s)
	}
}

func TestComputeSlotsNeverExtendsPastIntervalEnd(t *testing.T) {
	// 09:00-10:15 with a 30-minute service: the 10:00 candidate would
	// run to 10:30 and must be discarded.
	working := []Interval{ivl(t, "09:00", "10:15")}

	slots, err := ComputeSlots(working, 30*time.Minute, nil, 0)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, ivl(t, "09:30", "10:00"), slots[1])
}

func TestComputeSlotsShortIntervalYieldsNothing(t *testing.T) {
	working := []Interval{ivl(t, "09:00", "09:20")}

	slots, err := ComputeSlots(working, 30*time.Minute, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeSlotsFullyBookedYieldsNothing(t *testing.T) {
	working := []Interval{ivl(t, "09:00", "11:00")}
	booked := []Interval{ivl(t, "09:00", "11:00")}

	slots, err := ComputeSlots(working, 30*time.Minute, booked, 0)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeSlotsSkipsBookedWindows(t *testing.T) {
	// Working 09:00-11:00, a 15-minute appointment already sits at
	// 09:00-09:30 (15-minute service booked on a 30-minute grid edge),
	// requesting a 30-minute service: only 09:30, 10:00 and 10:30 remain.
	working := []Interval{ivl(t, "09:00", "11:00")}
	booked := []Interval{ivl(t, "09:00", "09:30")}

	slots, err := ComputeSlots(working, 30*time.Minute, booked, 0)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, ivl(t, "09:30", "10:00"), slots[0])
	assert.Equal(t, ivl(t, "10:00", "10:30"), slots[1])
	assert.Equal(t, ivl(t, "10:30", "11:00"), slots[2])
}

func TestComputeSlotsCustomGranularity(t *testing.T) {
	working := []Interval{ivl(t, "09:00", "10:00")}

	slots, err := ComputeSlots(working, 30*time.Minute, nil, 15*time.Minute)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, ivl(t, "09:15", "09:45"), slots[1])
}

func TestComputeSlotsOrdersAcrossIntervals(t *testing.T) {
	working := []Interval{
		ivl(t, "14:00", "15:00"),
		ivl(t, "09:00", "10:00"),
	}

	slots, err := ComputeSlots(working, 30*time.Minute, nil, 0)
	require.NoError(t, err)
	require.Len(t, slots, 4)
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i].Start.After(slots[i-1].Start), "slots must be ascending by start")
	}
}
