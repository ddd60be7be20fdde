package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/internal/repository"
)

const serviceColumns = `id, name, description, duration_minutes, price, status, created_at, updated_at`

type serviceRepository struct {
	BaseRepository
}

func NewServiceRepository(db *sqlx.DB) repository.ServiceRepository {
	return &serviceRepository{NewBaseRepository(db)}
}

func (r *serviceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (` + serviceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if service.ID == uuid.Nil {
		service.ID = uuid.New()
	}
	now := time.Now().UTC()
	service.CreatedAt = now
	service.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		service.ID,
		service.Name,
		service.Description,
		service.Duration,
		service.Price,
		service.Status,
		service.CreatedAt,
		service.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", mapError(err))
	}
	return nil
}

func (r *serviceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	var service model.Service
	if err := r.db.GetContext(ctx, &service, query, id); err != nil {
		return nil, fmt.Errorf("failed to get service: %w", mapError(err))
	}
	return &service, nil
}

func (r *serviceRepository) Update(ctx context.Context, service *model.Service) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, duration_minutes = $3, price = $4, status = $5, updated_at = $6
		WHERE id = $7
	`
	service.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		service.Name,
		service.Description,
		service.Duration,
		service.Price,
		service.Status,
		service.UpdatedAt,
		service.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", mapError(err))
	}
	return requireAffected(result, "service")
}

func (r *serviceRepository) List(ctx context.Context, status model.RecordStatus) ([]*model.Service, error) {
	var where whereBuilder
	if status != "" {
		where.add("status = $%d", status)
	}
	query := `SELECT ` + serviceColumns + ` FROM services` + where.clause() + ` ORDER BY name ASC`

	services := make([]*model.Service, 0)
	if err := r.db.SelectContext(ctx, &services, query, where.args...); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}
