package model

import (
	"time"

	"github.com/google/uuid"
)

// Service is a bookable procedure. Its duration determines slot granularity.
type Service struct {
	Base
	Name            string    `db:"name" json:"name"`
	Price           float64   `db:"price" json:"price"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	DoctorID        uuid.UUID `db:"doctor_id" json:"doctor_id"`
}

// Duration returns the service duration as a time.Duration.
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}
