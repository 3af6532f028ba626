package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
	"github.com/kientrank3/revita-scheduling-api/internal/schedule"
	apperrors "github.com/kientrank3/revita-scheduling-api/pkg/errors"
)

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, code, patient_profile_id, doctor_id, service_id,
		       date, start_time, end_time, status, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) ListActiveForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT id, code, patient_profile_id, doctor_id, service_id,
		       date, start_time, end_time, status, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND status <> 'cancelled'
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, doctorID, date.Format(model.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// Reserve commits a fully-specified candidate. The advisory transaction
// lock serializes reservations per doctor, so the conflict re-check and
// the insert act as one atomic unit: two concurrent requests for the
// same slot cannot both pass the check. Client-observed availability is
// never trusted here.
func (r *appointmentRepository) Reserve(ctx context.Context, appointment *model.Appointment) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin reservation: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryKey(appointment.DoctorID)); err != nil {
		return fmt.Errorf("failed to acquire doctor lock: %w", err)
	}

	query := `
		SELECT id, code, patient_profile_id, doctor_id, service_id,
		       date, start_time, end_time, status, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1 AND date = $2 AND status <> 'cancelled'
	`
	var current []*model.Appointment
	err = tx.SelectContext(ctx, &current, query, appointment.DoctorID, appointment.Date.Format(model.DateLayout))
	if err != nil {
		return fmt.Errorf("failed to re-check appointments: %w", err)
	}

	entries := make([]schedule.Entry, 0, len(current))
	for _, apt := range current {
		entries = append(entries, schedule.Entry{
			ID:       apt.ID,
			Interval: schedule.Interval{Start: apt.StartTime, End: apt.EndTime},
			Active:   !apt.Status.IsCancelled(),
		})
	}

	candidate := schedule.Interval{Start: appointment.StartTime, End: appointment.EndTime}
	if conflicts := schedule.FindConflicts(candidate, entries, nil); len(conflicts) > 0 {
		return &apperrors.ConflictError{
			Date:      appointment.Date,
			StartTime: conflicts[0].Interval.Start,
			EndTime:   conflicts[0].Interval.End,
		}
	}

	insert := `
		INSERT INTO appointments (
			id, code, patient_profile_id, doctor_id, service_id,
			date, start_time, end_time, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = tx.ExecContext(ctx, insert,
		appointment.ID,
		appointment.Code,
		appointment.PatientProfileID,
		appointment.DoctorID,
		appointment.ServiceID,
		appointment.Date.Format(model.DateLayout),
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert appointment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reservation: %w", err)
	}
	return nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("appointment", nil)
	}
	return nil
}
