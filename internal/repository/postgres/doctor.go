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

const doctorColumns = `id, name, email, specialty, password_hash, status, created_at, updated_at`

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{NewBaseRepository(db)}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (` + doctorColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if doctor.ID == uuid.Nil {
		doctor.ID = uuid.New()
	}
	now := time.Now().UTC()
	doctor.CreatedAt = now
	doctor.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.Name,
		doctor.Email,
		doctor.Specialty,
		doctor.PasswordHash,
		doctor.Status,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", mapError(err))
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`

	var doctor model.Doctor
	if err := r.db.GetContext(ctx, &doctor, query, id); err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", mapError(err))
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors
		SET name = $1, email = $2, specialty = $3, status = $4, updated_at = $5
		WHERE id = $6
	`
	doctor.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		doctor.Name,
		doctor.Email,
		doctor.Specialty,
		doctor.Status,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor: %w", mapError(err))
	}
	return requireAffected(result, "doctor")
}

func (r *doctorRepository) List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int, error) {
	var where whereBuilder
	if filters.Status != "" {
		where.add("status = $%d", filters.Status)
	}
	if filters.Search != "" {
		where.add("(name ILIKE $%[1]d OR specialty ILIKE $%[1]d)", "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM doctors`+where.clause(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count doctors: %w", err)
	}

	page := filters.Pagination.Normalize()
	suffix, args := where.page(page.PageSize, page.Offset())
	query := `SELECT ` + doctorColumns + ` FROM doctors` + where.clause() + ` ORDER BY name ASC` + suffix

	doctors := make([]*model.Doctor, 0)
	if err := r.db.SelectContext(ctx, &doctors, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, total, nil
}
