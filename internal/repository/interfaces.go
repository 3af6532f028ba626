package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
)

// All repository interfaces in one file
type (
	SpecialtyRepository interface {
		List(ctx context.Context) ([]*model.Specialty, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Specialty, error)
	}

	DoctorRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		ListBySpecialty(ctx context.Context, specialtyID uuid.UUID) ([]*model.Doctor, error)
	}

	ServiceRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Service, error)
	}

	WorkingDayRepository interface {
		GetForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*model.WorkingDay, error)
		ListForMonth(ctx context.Context, doctorID uuid.UUID, month time.Time) ([]*model.WorkingDay, error)
	}

	// AppointmentRepository is the only writer of appointment rows.
	// Reserve must execute its conflict re-check and insert as one
	// atomic unit with respect to concurrent reservations for the same
	// doctor; it returns *apperrors.ConflictError when the slot is taken.
	AppointmentRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		ListActiveForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error)
		Reserve(ctx context.Context, appointment *model.Appointment) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
	}

	// WorkSessionRepository mirrors AppointmentRepository for staff
	// rostering: writes are serialized per staff id and guarded by the
	// shared overlap check.
	WorkSessionRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.WorkSession, error)
		ListForStaff(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.WorkSession, error)
		ListActiveForStaff(ctx context.Context, staffID uuid.UUID) ([]*model.WorkSession, error)
		CreateGuarded(ctx context.Context, session *model.WorkSession) error
		UpdateGuarded(ctx context.Context, session *model.WorkSession) error
	}
)
