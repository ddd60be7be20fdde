package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/internal/repository"
)

type workingHoursRepository struct {
	BaseRepository
}

func NewWorkingHoursRepository(db *sqlx.DB) repository.WorkingHoursRepository {
	return &workingHoursRepository{NewBaseRepository(db)}
}

func (r *workingHoursRepository) GetForDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*model.WorkingHours, error) {
	query := `
		SELECT id, doctor_id, day_of_week, start_time, end_time
		FROM working_hours
		WHERE doctor_id = $1 AND day_of_week = $2
	`
	var hours model.WorkingHours
	if err := r.db.GetContext(ctx, &hours, query, doctorID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("failed to get working hours: %w", mapError(err))
	}
	return &hours, nil
}

func (r *workingHoursRepository) ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.WorkingHours, error) {
	query := `
		SELECT id, doctor_id, day_of_week, start_time, end_time
		FROM working_hours
		WHERE doctor_id = $1
		ORDER BY day_of_week ASC
	`
	hours := make([]*model.WorkingHours, 0)
	if err := r.db.SelectContext(ctx, &hours, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list working hours: %w", err)
	}
	return hours, nil
}

// Replace swaps the doctor's whole weekly schedule in one transaction.
func (r *workingHoursRepository) Replace(ctx context.Context, doctorID uuid.UUID, hours []*model.WorkingHours) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM working_hours WHERE doctor_id = $1`, doctorID); err != nil {
			return fmt.Errorf("failed to clear working hours: %w", err)
		}

		insert := `
			INSERT INTO working_hours (id, doctor_id, day_of_week, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5)
		`
		for _, h := range hours {
			if h.ID == uuid.Nil {
				h.ID = uuid.New()
			}
			h.DoctorID = doctorID
			if _, err := tx.ExecContext(ctx, insert, h.ID, h.DoctorID, h.DayOfWeek, h.StartTime, h.EndTime); err != nil {
				return fmt.Errorf("failed to insert working hours: %w", mapError(err))
			}
		}
		return nil
	})
}
