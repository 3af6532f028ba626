package model

import (
	"github.com/google/uuid"
)

// Doctor is read-mostly; availability is derived from working days and
// appointments, never stored on the entity.
type Doctor struct {
	Base
	DisplayName       string     `db:"display_name" json:"display_name"`
	SpecialtyID       uuid.UUID  `db:"specialty_id" json:"specialty_id"`
	Rating            float64    `db:"rating" json:"rating"`
	YearsOfExperience int        `db:"years_of_experience" json:"years_of_experience"`
	BoothID           *uuid.UUID `db:"booth_id" json:"booth_id,omitempty"`
}
