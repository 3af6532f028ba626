package model

// Specialty is immutable reference data, selected first in the booking flow.
type Specialty struct {
	Base
	Name string `db:"name" json:"name"`
}
