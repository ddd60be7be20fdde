package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/internal/repository"
	"github.com/jwalitptl/hivcare-api/internal/scheduling"
	"github.com/jwalitptl/hivcare-api/internal/service/event"
	apperrors "github.com/jwalitptl/hivcare-api/pkg/errors"
	"github.com/jwalitptl/hivcare-api/pkg/logger"
	"github.com/jwalitptl/hivcare-api/pkg/metrics"
	"github.com/jwalitptl/hivcare-api/pkg/security"
)

// DateLayout is the wire format of appointment dates.
const DateLayout = "2006-01-02"

const maxCodeAttempts = 3

// ServiceCatalog resolves bookable services.
type ServiceCatalog interface {
	GetService(ctx context.Context, id uuid.UUID) (*model.Service, error)
}

type Service struct {
	repo     repository.AppointmentRepository
	doctors  repository.DoctorRepository
	patients repository.PatientRepository
	hours    repository.WorkingHoursRepository
	catalog  ServiceCatalog
	events   event.Emitter
	codes    security.CodeGenerator
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	hours repository.WorkingHoursRepository,
	catalog ServiceCatalog,
	events event.Emitter,
	codes security.CodeGenerator,
	m *metrics.Metrics,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		doctors:  doctors,
		patients: patients,
		hours:    hours,
		catalog:  catalog,
		events:   events,
		codes:    codes,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// ParseDate parses a YYYY-MM-DD date as midnight UTC.
func ParseDate(value string) (time.Time, error) {
	date, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, apperrors.BadRequest("date must be formatted YYYY-MM-DD", err)
	}
	return date, nil
}

// GetAvailableSlots lists the HH:mm start times at which the service can be
// booked with the doctor on the given date. A doctor who does not work that
// weekday yields an empty list.
func (s *Service) GetAvailableSlots(ctx context.Context, q model.SlotQuery) ([]string, error) {
	doctor, err := s.activeDoctor(ctx, q.DoctorID)
	if err != nil {
		s.metrics.SlotLookups.WithLabelValues("not_found").Inc()
		return nil, err
	}

	svc, err := s.activeService(ctx, q.ServiceID)
	if err != nil {
		s.metrics.SlotLookups.WithLabelValues("not_found").Inc()
		return nil, err
	}

	window, err := s.workingWindow(ctx, doctor.ID, q.Date)
	if err != nil {
		s.metrics.SlotLookups.WithLabelValues("error").Inc()
		return nil, err
	}
	if window == nil {
		s.metrics.SlotLookups.WithLabelValues("off_day").Inc()
		s.metrics.SlotsReturned.Observe(0)
		return []string{}, nil
	}

	booked, err := s.repo.ListActiveForDoctorOnDate(ctx, doctor.ID, q.Date)
	if err != nil {
		s.metrics.SlotLookups.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load doctor appointments: %w", err)
	}

	busy := make([]scheduling.Interval, 0, len(booked))
	for _, a := range booked {
		busy = append(busy, a.Interval())
	}

	slots := scheduling.AvailableSlots(window, svc.DurationValue(), busy)
	s.metrics.SlotLookups.WithLabelValues("ok").Inc()
	s.metrics.SlotsReturned.Observe(float64(len(slots)))
	return slots, nil
}

// CreateAppointment books a pending appointment. The conflict check runs
// before the insert but not atomically with it.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	doctorID, patientID, serviceID, err := parseBookingIDs(req)
	if err != nil {
		return nil, err
	}
	date, err := ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	start, err := scheduling.ParseClock(req.StartTime)
	if err != nil {
		return nil, apperrors.BadRequest("start_time must be formatted HH:mm", err)
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	if date.Before(today) {
		return nil, apperrors.BadRequest("appointment date is in the past", nil)
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, apperrors.FromLookup("patient", err)
	}
	if !patient.IsActive() {
		return nil, apperrors.BadRequest("patient is inactive", nil)
	}

	doctor, err := s.activeDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	svc, err := s.activeService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	end := start.Add(svc.DurationValue())

	window, err := s.workingWindow(ctx, doctor.ID, date)
	if err != nil {
		return nil, err
	}
	if window == nil {
		return nil, apperrors.BadRequest(fmt.Sprintf("doctor does not work on %s", date.Weekday()), nil)
	}
	if start < window.Start || end > window.End {
		return nil, apperrors.BadRequest(
			fmt.Sprintf("appointment %s-%s is outside working hours %s-%s", start, end, window.Start, window.End), nil)
	}

	conflict, err := s.repo.HasConflict(ctx, doctor.ID, date, start, end)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperrors.Conflict("requested time overlaps an existing appointment", nil)
	}

	appointment := &model.Appointment{
		DoctorID:  doctor.ID,
		PatientID: patient.ID,
		ServiceID: svc.ID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Status:    model.AppointmentStatusPending,
		Notes:     req.Notes,
	}
	if err := s.insertWithReference(ctx, appointment); err != nil {
		return nil, err
	}

	s.metrics.AppointmentsChanged.WithLabelValues(string(appointment.Status)).Inc()
	s.emit(ctx, model.EventAppointmentCreated, s.eventPayload(appointment, patient, doctor, svc, ""))
	return appointment, nil
}

// insertWithReference retries with a fresh code when the reference collides.
func (s *Service) insertWithReference(ctx context.Context, appointment *model.Appointment) error {
	var lastErr error
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.codes.Generate()
		if err != nil {
			return fmt.Errorf("failed to generate reference code: %w", err)
		}
		appointment.ReferenceCode = code

		lastErr = s.repo.Create(ctx, appointment)
		if lastErr == nil {
			return nil
		}
		if !apperrors.Is(lastErr, apperrors.ErrDuplicate) {
			return fmt.Errorf("failed to create appointment: %w", lastErr)
		}
	}
	return fmt.Errorf("failed to allocate a unique reference code: %w", lastErr)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.FromLookup("appointment", err)
	}
	return appointment, nil
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		return nil, 0, apperrors.BadRequest("end_date is before start_date", nil)
	}
	appointments, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, total, nil
}

func (s *Service) ConfirmAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusConfirmed, func(*model.Appointment) {})
}

func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusCancelled, func(a *model.Appointment) {
		a.CancelReason = &reason
	})
}

func (s *Service) CompleteAppointment(ctx context.Context, id uuid.UUID, notes string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusCompleted, func(a *model.Appointment) {
		if notes != "" {
			a.ConsultationNotes = &notes
		}
	})
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, next model.AppointmentStatus, apply func(*model.Appointment)) (*model.Appointment, error) {
	appointment, err := s.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}

	if !appointment.Status.CanTransitionTo(next) {
		return nil, apperrors.Conflict(
			fmt.Sprintf("cannot change appointment from %s to %s", appointment.Status, next), nil)
	}

	appointment.Status = next
	apply(appointment)

	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, apperrors.FromWrite("appointment", "update", err)
	}

	s.metrics.AppointmentsChanged.WithLabelValues(string(next)).Inc()
	s.emit(ctx, "appointment."+string(next), s.describe(ctx, appointment))
	return appointment, nil
}

func (s *Service) activeDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		return nil, apperrors.FromLookup("doctor", err)
	}
	if !doctor.IsActive() {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return doctor, nil
}

func (s *Service) activeService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	svc, err := s.catalog.GetService(ctx, id)
	if err != nil {
		return nil, apperrors.FromLookup("service", err)
	}
	if !svc.IsActive() {
		return nil, apperrors.NotFound("service", nil)
	}
	return svc, nil
}

// workingWindow returns nil when the doctor has no hours for the date's weekday.
func (s *Service) workingWindow(ctx context.Context, doctorID uuid.UUID, date time.Time) (*scheduling.Window, error) {
	hours, err := s.hours.GetForDay(ctx, doctorID, int(date.Weekday()))
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load working hours: %w", err)
	}
	return hours.Window(), nil
}

// describe gathers the names notifications need; lookup failures leave the
// corresponding fields empty.
func (s *Service) describe(ctx context.Context, a *model.Appointment) model.AppointmentEvent {
	var (
		patient *model.Patient
		doctor  *model.Doctor
		svc     *model.Service
	)
	if p, err := s.patients.Get(ctx, a.PatientID); err == nil {
		patient = p
	}
	if d, err := s.doctors.Get(ctx, a.DoctorID); err == nil {
		doctor = d
	}
	if sv, err := s.catalog.GetService(ctx, a.ServiceID); err == nil {
		svc = sv
	}

	reason := ""
	if a.CancelReason != nil {
		reason = *a.CancelReason
	}
	return s.eventPayload(a, patient, doctor, svc, reason)
}

func (s *Service) eventPayload(a *model.Appointment, p *model.Patient, d *model.Doctor, svc *model.Service, reason string) model.AppointmentEvent {
	evt := model.AppointmentEvent{
		AppointmentID: a.ID,
		ReferenceCode: a.ReferenceCode,
		Status:        a.Status,
		Date:          a.Date.Format(DateLayout),
		StartTime:     a.StartTime.String(),
		EndTime:       a.EndTime.String(),
		Reason:        reason,
	}
	if p != nil {
		evt.PatientName = p.Name
		evt.PatientEmail = p.Email
	}
	if d != nil {
		evt.DoctorName = d.Name
	}
	if svc != nil {
		evt.ServiceName = svc.Name
	}
	return evt
}

// emit never fails the request; an event lost here is logged.
func (s *Service) emit(ctx context.Context, eventType string, payload model.AppointmentEvent) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.log.Error(err, "failed to record appointment event",
			"event_type", eventType,
			"appointment_id", payload.AppointmentID.String(),
		)
	}
}

func parseBookingIDs(req *model.CreateAppointmentRequest) (doctorID, patientID, serviceID uuid.UUID, err error) {
	if doctorID, err = uuid.Parse(req.DoctorID); err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, apperrors.BadRequest("invalid doctor_id", err)
	}
	if patientID, err = uuid.Parse(req.PatientID); err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, apperrors.BadRequest("invalid patient_id", err)
	}
	if serviceID, err = uuid.Parse(req.ServiceID); err != nil {
		return uuid.Nil, uuid.Nil, uuid.Nil, apperrors.BadRequest("invalid service_id", err)
	}
	return doctorID, patientID, serviceID, nil
}
