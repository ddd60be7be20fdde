package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/internal/scheduling"
)

// All repository interfaces in one file
type (
	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		List(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int, error)
	}

	WorkingHoursRepository interface {
		// GetForDay returns errors.ErrNotFound when the doctor does not work that weekday.
		GetForDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) (*model.WorkingHours, error)
		ListForDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.WorkingHours, error)
		Replace(ctx context.Context, doctorID uuid.UUID, hours []*model.WorkingHours) error
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		Update(ctx context.Context, service *model.Service) error
		List(ctx context.Context, status model.RecordStatus) ([]*model.Service, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error)
		// ListActiveForDoctorOnDate excludes cancelled appointments.
		ListActiveForDoctorOnDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Appointment, error)
		HasConflict(ctx context.Context, doctorID uuid.UUID, date time.Time, start, end scheduling.Clock) (bool, error)
	}

	ARVRepository interface {
		CreateDrug(ctx context.Context, drug *model.ARVDrug) error
		GetDrug(ctx context.Context, id uuid.UUID) (*model.ARVDrug, error)
		UpdateDrug(ctx context.Context, drug *model.ARVDrug) error
		ListDrugs(ctx context.Context, status model.RecordStatus) ([]*model.ARVDrug, error)
		CreateRegimen(ctx context.Context, regimen *model.Regimen) error
		GetRegimen(ctx context.Context, id uuid.UUID) (*model.Regimen, error)
		ListRegimens(ctx context.Context, status model.RecordStatus) ([]*model.Regimen, error)
		// StartPrescription ends the patient's active prescription and inserts the new one atomically.
		StartPrescription(ctx context.Context, prescription *model.Prescription) error
		GetPrescription(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
		EndPrescription(ctx context.Context, id uuid.UUID, endDate time.Time) error
		ListPrescriptions(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		MarkProcessed(ctx context.Context, id uuid.UUID) error
		MarkRetry(ctx context.Context, id uuid.UUID, errMsg string, retryAt time.Time) error
		MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
