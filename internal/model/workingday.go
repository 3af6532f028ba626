package model

import (
	"time"

	"github.com/google/uuid"
)

// WorkingInterval is one contiguous open block within a working day.
type WorkingInterval struct {
	ID           uuid.UUID `db:"id" json:"id"`
	WorkingDayID uuid.UUID `db:"working_day_id" json:"working_day_id"`
	StartTime    time.Time `db:"start_time" json:"start_time"`
	EndTime      time.Time `db:"end_time" json:"end_time"`
}

// WorkingDay is generated by the roster subsystem and consumed read-only
// by the scheduling engine.
type WorkingDay struct {
	Base
	DoctorID  uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	Date      time.Time         `db:"date" json:"date"`
	Intervals []WorkingInterval `db:"-" json:"intervals"`
}
