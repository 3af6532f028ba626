package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
)

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `
		SELECT id, doctor_id, name, price, duration_minutes, created_at, updated_at
		FROM services
		WHERE id = $1
	`
	var service model.Service
	if err := r.db.GetContext(ctx, &service, query, id); err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	return &service, nil
}

func (r *serviceRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Service, error) {
	query := `
		SELECT id, doctor_id, name, price, duration_minutes, created_at, updated_at
		FROM services
		WHERE doctor_id = $1
		ORDER BY name ASC
	`
	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}
