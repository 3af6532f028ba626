package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
)

func (r *specialtyRepository) List(ctx context.Context) ([]*model.Specialty, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM specialties
		ORDER BY name ASC
	`
	var specialties []*model.Specialty
	if err := r.db.SelectContext(ctx, &specialties, query); err != nil {
		return nil, fmt.Errorf("failed to list specialties: %w", err)
	}
	return specialties, nil
}

func (r *specialtyRepository) Get(ctx context.Context, id uuid.UUID) (*model.Specialty, error) {
	query := `
		SELECT id, name, created_at, updated_at
		FROM specialties
		WHERE id = $1
	`
	var specialty model.Specialty
	if err := r.db.GetContext(ctx, &specialty, query, id); err != nil {
		return nil, fmt.Errorf("failed to get specialty: %w", err)
	}
	return &specialty, nil
}
