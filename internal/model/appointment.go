package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// IsCancelled reports whether the status excludes the appointment from
// conflict checks.
func (s AppointmentStatus) IsCancelled() bool {
	return s == AppointmentStatusCancelled
}

// appointmentTransitions maps each status to the statuses it may move to.
// Transitions are monotonic: a cancelled or completed appointment never
// comes back.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusConfirmed, AppointmentStatusCancelled},
	AppointmentStatusConfirmed: {AppointmentStatusCompleted, AppointmentStatusCancelled},
	AppointmentStatusCompleted: {},
	AppointmentStatusCancelled: {},
}

// CanTransitionTo reports whether the status may move to next.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Appointment is created only by the reservation transaction. No two
// non-cancelled appointments for the same doctor may overlap on a date.
type Appointment struct {
	Base
	Code             string            `db:"code" json:"code"`
	PatientProfileID uuid.UUID         `db:"patient_profile_id" json:"patient_profile_id"`
	DoctorID         uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	ServiceID        uuid.UUID         `db:"service_id" json:"service_id"`
	Date             time.Time         `db:"date" json:"date"`
	StartTime        time.Time         `db:"start_time" json:"start_time"`
	EndTime          time.Time         `db:"end_time" json:"end_time"`
	Status           AppointmentStatus `db:"status" json:"status"`
}

type CreateAppointmentRequest struct {
	PatientProfileID uuid.UUID `json:"patient_profile_id" binding:"required"`
	DoctorID         uuid.UUID `json:"doctor_id" binding:"required"`
	ServiceID        uuid.UUID `json:"service_id" binding:"required"`
	Date             string    `json:"date" binding:"required"`
	StartTime        time.Time `json:"start_time" binding:"required"`
	EndTime          time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
}
