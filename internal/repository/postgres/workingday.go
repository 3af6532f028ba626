package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
)

func (r *workingDayRepository) GetForDate(ctx context.Context, doctorID uuid.UUID, date time.Time) (*model.WorkingDay, error) {
	query := `
		SELECT id, doctor_id, date, created_at, updated_at
		FROM working_days
		WHERE doctor_id = $1 AND date = $2
	`
	var day model.WorkingDay
	err := r.db.GetContext(ctx, &day, query, doctorID, date.Format(model.DateLayout))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get working day: %w", err)
	}

	if err := r.loadIntervals(ctx, &day); err != nil {
		return nil, err
	}
	return &day, nil
}

func (r *workingDayRepository) ListForMonth(ctx context.Context, doctorID uuid.UUID, month time.Time) ([]*model.WorkingDay, error) {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, month.Location())
	next := first.AddDate(0, 1, 0)

	query := `
		SELECT id, doctor_id, date, created_at, updated_at
		FROM working_days
		WHERE doctor_id = $1 AND date >= $2 AND date < $3
		ORDER BY date ASC
	`
	var days []*model.WorkingDay
	err := r.db.SelectContext(ctx, &days, query, doctorID,
		first.Format(model.DateLayout), next.Format(model.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to list working days: %w", err)
	}

	for _, day := range days {
		if err := r.loadIntervals(ctx, day); err != nil {
			return nil, err
		}
	}
	return days, nil
}

func (r *workingDayRepository) loadIntervals(ctx context.Context, day *model.WorkingDay) error {
	query := `
		SELECT id, working_day_id, start_time, end_time
		FROM working_intervals
		WHERE working_day_id = $1
		ORDER BY start_time ASC
	`
	if err := r.db.SelectContext(ctx, &day.Intervals, query, day.ID); err != nil {
		return fmt.Errorf("failed to load working intervals: %w", err)
	}
	return nil
}
