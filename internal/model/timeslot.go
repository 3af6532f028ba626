package model

import "time"

// TimeSlot is a candidate bookable window under half-open [start, end)
// semantics. Slots are computed on demand and never persisted; a slot
// becomes durable only once embedded in an Appointment.
type TimeSlot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}
