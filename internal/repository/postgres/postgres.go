package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/kientrank3/revita-scheduling-api/internal/repository"
)

type specialtyRepository struct {
	db *sqlx.DB
}

type doctorRepository struct {
	db *sqlx.DB
}

type serviceRepository struct {
	db *sqlx.DB
}

type workingDayRepository struct {
	db *sqlx.DB
}

type appointmentRepository struct {
	db *sqlx.DB
}

type workSessionRepository struct {
	db *sqlx.DB
}

func NewSpecialtyRepository(db *sqlx.DB) repository.SpecialtyRepository {
	return &specialtyRepository{db: db}
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{db: db}
}

func NewServiceRepository(db *sqlx.DB) repository.ServiceRepository {
	return &serviceRepository{db: db}
}

func NewWorkingDayRepository(db *sqlx.DB) repository.WorkingDayRepository {
	return &workingDayRepository{db: db}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{db: db}
}

func NewWorkSessionRepository(db *sqlx.DB) repository.WorkSessionRepository {
	return &workSessionRepository{db: db}
}
