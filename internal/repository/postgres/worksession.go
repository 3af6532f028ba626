package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
	"github.com/kientrank3/revita-scheduling-api/internal/schedule"
	apperrors "github.com/kientrank3/revita-scheduling-api/pkg/errors"
)

func (r *workSessionRepository) Get(ctx context.Context, id uuid.UUID) (*model.WorkSession, error) {
	query := `
		SELECT id, staff_id, booth_id, start_time, end_time, status,
		       created_at, updated_at
		FROM work_sessions
		WHERE id = $1
	`
	var session model.WorkSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, fmt.Errorf("failed to get work session: %w", err)
	}
	if err := r.loadServiceIDs(ctx, r.db, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *workSessionRepository) ListForStaff(ctx context.Context, staffID uuid.UUID, from, to time.Time) ([]*model.WorkSession, error) {
	query := `
		SELECT id, staff_id, booth_id, start_time, end_time, status,
		       created_at, updated_at
		FROM work_sessions
		WHERE staff_id = $1 AND start_time < $3 AND end_time > $2
		ORDER BY start_time ASC
	`
	var sessions []*model.WorkSession
	if err := r.db.SelectContext(ctx, &sessions, query, staffID, from, to); err != nil {
		return nil, fmt.Errorf("failed to list work sessions: %w", err)
	}
	for _, s := range sessions {
		if err := r.loadServiceIDs(ctx, r.db, s); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (r *workSessionRepository) ListActiveForStaff(ctx context.Context, staffID uuid.UUID) ([]*model.WorkSession, error) {
	query := `
		SELECT id, staff_id, booth_id, start_time, end_time, status,
		       created_at, updated_at
		FROM work_sessions
		WHERE staff_id = $1 AND status <> 'canceled'
		ORDER BY start_time ASC
	`
	var sessions []*model.WorkSession
	if err := r.db.SelectContext(ctx, &sessions, query, staffID); err != nil {
		return nil, fmt.Errorf("failed to list active work sessions: %w", err)
	}
	return sessions, nil
}

// CreateGuarded inserts a session after the per-staff overlap re-check,
// all under the staff advisory lock.
func (r *workSessionRepository) CreateGuarded(ctx context.Context, session *model.WorkSession) error {
	return r.guarded(ctx, session, nil, func(tx *sqlx.Tx) error {
		insert := `
			INSERT INTO work_sessions (
				id, staff_id, booth_id, start_time, end_time, status,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`
		_, err := tx.ExecContext(ctx, insert,
			session.ID,
			session.StaffID,
			session.BoothID,
			session.StartTime,
			session.EndTime,
			session.Status,
			session.CreatedAt,
			session.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert work session: %w", err)
		}
		return r.replaceServiceIDs(ctx, tx, session)
	})
}

// UpdateGuarded rewrites a session's time range, services and status.
// The session's own row is excluded from the overlap check so edits
// never conflict with themselves.
func (r *workSessionRepository) UpdateGuarded(ctx context.Context, session *model.WorkSession) error {
	return r.guarded(ctx, session, &session.ID, func(tx *sqlx.Tx) error {
		update := `
			UPDATE work_sessions
			SET start_time = $1, end_time = $2, status = $3, updated_at = $4
			WHERE id = $5
		`
		result, err := tx.ExecContext(ctx, update,
			session.StartTime,
			session.EndTime,
			session.Status,
			session.UpdatedAt,
			session.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update work session: %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return apperrors.NewNotFound("work session", nil)
		}
		return r.replaceServiceIDs(ctx, tx, session)
	})
}

func (r *workSessionRepository) guarded(ctx context.Context, session *model.WorkSession, excludeID *uuid.UUID, write func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin work session write: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryKey(session.StaffID)); err != nil {
		return fmt.Errorf("failed to acquire staff lock: %w", err)
	}

	// Canceled sessions stay out of the check; a session being canceled
	// itself needs no overlap validation.
	if !session.Status.IsCanceled() {
		query := `
			SELECT id, staff_id, booth_id, start_time, end_time, status,
			       created_at, updated_at
			FROM work_sessions
			WHERE staff_id = $1 AND status <> 'canceled'
		`
		var existing []*model.WorkSession
		if err := tx.SelectContext(ctx, &existing, query, session.StaffID); err != nil {
			return fmt.Errorf("failed to re-check work sessions: %w", err)
		}

		entries := make([]schedule.Entry, 0, len(existing))
		for _, s := range existing {
			entries = append(entries, schedule.Entry{
				ID:       s.ID,
				Interval: schedule.Interval{Start: s.StartTime, End: s.EndTime},
				Active:   !s.Status.IsCanceled(),
			})
		}

		candidate := schedule.Interval{Start: session.StartTime, End: session.EndTime}
		if conflicts := schedule.FindConflicts(candidate, entries, excludeID); len(conflicts) > 0 {
			return &apperrors.ConflictError{
				Date:      conflicts[0].Interval.Start,
				StartTime: conflicts[0].Interval.Start,
				EndTime:   conflicts[0].Interval.End,
			}
		}
	}

	if err := write(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit work session write: %w", err)
	}
	return nil
}

func (r *workSessionRepository) replaceServiceIDs(ctx context.Context, tx *sqlx.Tx, session *model.WorkSession) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM work_session_services WHERE work_session_id = $1`, session.ID); err != nil {
		return fmt.Errorf("failed to clear session services: %w", err)
	}
	for _, serviceID := range session.ServiceIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO work_session_services (work_session_id, service_id) VALUES ($1, $2)`,
			session.ID, serviceID)
		if err != nil {
			return fmt.Errorf("failed to attach session service: %w", err)
		}
	}
	return nil
}

func (r *workSessionRepository) loadServiceIDs(ctx context.Context, q sqlx.QueryerContext, session *model.WorkSession) error {
	query := `
		SELECT service_id
		FROM work_session_services
		WHERE work_session_id = $1
	`
	if err := sqlx.SelectContext(ctx, q, &session.ServiceIDs, query, session.ID); err != nil {
		return fmt.Errorf("failed to load session services: %w", err)
	}
	return nil
}
