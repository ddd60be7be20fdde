package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/internal/repository"
	"github.com/jwalitptl/hivcare-api/internal/scheduling"
)

const appointmentColumns = `id, doctor_id, patient_id, service_id, appointment_date, start_time, end_time,
	status, reference_code, notes, cancel_reason, consultation_notes, created_at, updated_at`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	now := time.Now().UTC()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.DoctorID,
		appointment.PatientID,
		appointment.ServiceID,
		appointment.Date,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.ReferenceCode,
		appointment.Notes,
		appointment.CancelReason,
		appointment.ConsultationNotes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", mapError(err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", mapError(err))
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET status = $1, notes = $2, cancel_reason = $3, consultation_notes = $4, updated_at = $5
		WHERE id = $6
	`
	appointment.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		appointment.Status,
		appointment.Notes,
		appointment.CancelReason,
		appointment.ConsultationNotes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return requireAffected(result, "appointment")
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	var where whereBuilder
	if filters.DoctorID != uuid.Nil {
		where.add("doctor_id = $%d", filters.DoctorID)
	}
	if filters.PatientID != uuid.Nil {
		where.add("patient_id = $%d", filters.PatientID)
	}
	if filters.Status != "" {
		where.add("status = $%d", filters.Status)
	}
	if filters.StartDate != nil {
		where.add("appointment_date >= $%d", *filters.StartDate)
	}
	if filters.EndDate != nil {
		where.add("appointment_date <= $%d", *filters.EndDate)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM appointments`+where.clause(), where.args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count appointments: %w", err)
	}

	page := filters.Pagination.Normalize()
	suffix, args := where.page(page.PageSize, page.Offset())
	query := `SELECT ` + appointmentColumns + ` FROM appointments` + where.clause() +
		` ORDER BY appointment_date ASC, start_time ASC` + suffix

	appointments := make([]*model.Appointment, 0)
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

func (r *appointmentRepository) ListActiveForDoctorOnDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2 AND status <> $3
		ORDER BY start_time ASC
	`
	appointments := make([]*model.Appointment, 0)
	err := r.db.SelectContext(ctx, &appointments, query, doctorID, date.Format(time.DateOnly), model.AppointmentStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("failed to list doctor appointments: %w", err)
	}
	return appointments, nil
}

// HasConflict reports whether a non-cancelled booking overlaps [start, end).
func (r *appointmentRepository) HasConflict(ctx context.Context, doctorID uuid.UUID, date time.Time, start, end scheduling.Clock) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $1
			AND appointment_date = $2
			AND status <> $3
			AND start_time < $4
			AND end_time > $5
		)
	`
	var exists bool
	err := r.db.GetContext(ctx, &exists, query, doctorID, date.Format(time.DateOnly), model.AppointmentStatusCancelled, end, start)
	if err != nil {
		return false, fmt.Errorf("failed to check appointment conflict: %w", err)
	}
	return exists, nil
}
