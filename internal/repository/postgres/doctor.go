package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
)

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, display_name, specialty_id, rating, years_of_experience,
		       booth_id, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`
	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, id); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) ListBySpecialty(ctx context.Context, specialtyID uuid.UUID) ([]*model.Doctor, error) {
	query := `
		SELECT id, display_name, specialty_id, rating, years_of_experience,
		       booth_id, created_at, updated_at
		FROM doctors
		WHERE specialty_id = $1
		ORDER BY rating DESC, display_name ASC
	`
	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query, specialtyID); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}
