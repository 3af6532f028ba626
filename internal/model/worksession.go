package model

import (
	"time"

	"github.com/google/uuid"
)

type WorkSessionStatus string

const (
	WorkSessionStatusPending    WorkSessionStatus = "pending"
	WorkSessionStatusApproved   WorkSessionStatus = "approved"
	WorkSessionStatusInProgress WorkSessionStatus = "in_progress"
	WorkSessionStatusCanceled   WorkSessionStatus = "canceled"
	WorkSessionStatusCompleted  WorkSessionStatus = "completed"
)

// IsCanceled reports whether the session is excluded from conflict checks.
func (s WorkSessionStatus) IsCanceled() bool {
	return s == WorkSessionStatusCanceled
}

var workSessionTransitions = map[WorkSessionStatus][]WorkSessionStatus{
	WorkSessionStatusPending:    {WorkSessionStatusApproved, WorkSessionStatusCanceled},
	WorkSessionStatusApproved:   {WorkSessionStatusInProgress, WorkSessionStatusCanceled},
	WorkSessionStatusInProgress: {WorkSessionStatusCompleted, WorkSessionStatusCanceled},
	WorkSessionStatusCanceled:   {},
	WorkSessionStatusCompleted:  {},
}

// CanTransitionTo reports whether the status may move to next.
func (s WorkSessionStatus) CanTransitionTo(next WorkSessionStatus) bool {
	for _, allowed := range workSessionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// WorkSession assigns a staff member to a booth for a set of services over
// a time range. Sessions use full timestamps and may cross midnight.
// No two non-canceled sessions for the same staff member may overlap.
type WorkSession struct {
	Base
	StaffID    uuid.UUID         `db:"staff_id" json:"staff_id"`
	BoothID    uuid.UUID         `db:"booth_id" json:"booth_id"`
	StartTime  time.Time         `db:"start_time" json:"start_time"`
	EndTime    time.Time         `db:"end_time" json:"end_time"`
	ServiceIDs []uuid.UUID       `db:"-" json:"service_ids"`
	Status     WorkSessionStatus `db:"status" json:"status"`
}

type CreateWorkSessionRequest struct {
	StaffID    uuid.UUID   `json:"staff_id" binding:"required"`
	BoothID    uuid.UUID   `json:"booth_id" binding:"required"`
	StartTime  time.Time   `json:"start_time" binding:"required"`
	EndTime    time.Time   `json:"end_time" binding:"required,gtfield=StartTime"`
	ServiceIDs []uuid.UUID `json:"service_ids" binding:"required,min=1"`
}

type UpdateWorkSessionRequest struct {
	StartTime  *time.Time         `json:"start_time"`
	EndTime    *time.Time         `json:"end_time"`
	ServiceIDs []uuid.UUID        `json:"service_ids"`
	Status     *WorkSessionStatus `json:"status"`
}
