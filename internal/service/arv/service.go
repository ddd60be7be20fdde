package arv

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/internal/repository"
	"github.com/jwalitptl/hivcare-api/internal/service/event"
	apperrors "github.com/jwalitptl/hivcare-api/pkg/errors"
	"github.com/jwalitptl/hivcare-api/pkg/logger"
)

const dateLayout = "2006-01-02"

// PrescriptionEvent is the payload of prescription.* events.
type PrescriptionEvent struct {
	PrescriptionID uuid.UUID `json:"prescription_id"`
	PatientID      uuid.UUID `json:"patient_id"`
	DoctorID       uuid.UUID `json:"doctor_id"`
	RegimenID      uuid.UUID `json:"regimen_id"`
	RegimenName    string    `json:"regimen_name,omitempty"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date,omitempty"`
}

// Service manages the ARV drug catalog, regimens and patient prescriptions.
type Service struct {
	repo     repository.ARVRepository
	patients repository.PatientRepository
	doctors  repository.DoctorRepository
	events   event.Emitter
	log      *logger.Logger
	now      func() time.Time
}

func NewService(
	repo repository.ARVRepository,
	patients repository.PatientRepository,
	doctors repository.DoctorRepository,
	events event.Emitter,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		patients: patients,
		doctors:  doctors,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

func (s *Service) CreateDrug(ctx context.Context, req *model.CreateDrugRequest) (*model.ARVDrug, error) {
	drug := &model.ARVDrug{
		Name:        req.Name,
		GenericName: req.GenericName,
		DrugClass:   req.DrugClass,
		Form:        req.Form,
		Strength:    req.Strength,
		Status:      model.RecordStatusActive,
	}
	if err := s.repo.CreateDrug(ctx, drug); err != nil {
		return nil, apperrors.FromWrite("drug", "create", err)
	}
	return drug, nil
}

func (s *Service) GetDrug(ctx context.Context, id uuid.UUID) (*model.ARVDrug, error) {
	drug, err := s.repo.GetDrug(ctx, id)
	if err != nil {
		return nil, apperrors.FromLookup("drug", err)
	}
	return drug, nil
}

func (s *Service) UpdateDrug(ctx context.Context, id uuid.UUID, req *model.UpdateDrugRequest) (*model.ARVDrug, error) {
	drug, err := s.GetDrug(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		drug.Name = *req.Name
	}
	if req.GenericName != nil {
		drug.GenericName = *req.GenericName
	}
	if req.DrugClass != nil {
		drug.DrugClass = *req.DrugClass
	}
	if req.Form != nil {
		drug.Form = *req.Form
	}
	if req.Strength != nil {
		drug.Strength = *req.Strength
	}
	if req.Status != nil && *req.Status != drug.Status {
		if !drug.Status.CanTransitionTo(*req.Status) {
			return nil, apperrors.BadRequest("invalid drug status", nil)
		}
		drug.Status = *req.Status
	}

	if err := s.repo.UpdateDrug(ctx, drug); err != nil {
		return nil, apperrors.FromWrite("drug", "update", err)
	}
	return drug, nil
}

func (s *Service) DeactivateDrug(ctx context.Context, id uuid.UUID) error {
	inactive := model.RecordStatusInactive
	_, err := s.UpdateDrug(ctx, id, &model.UpdateDrugRequest{Status: &inactive})
	return err
}

func (s *Service) ListDrugs(ctx context.Context, status model.RecordStatus) ([]*model.ARVDrug, error) {
	return s.repo.ListDrugs(ctx, status)
}

// CreateRegimen requires at least one drug, each active and listed once.
func (s *Service) CreateRegimen(ctx context.Context, req *model.CreateRegimenRequest) (*model.Regimen, error) {
	if len(req.Drugs) == 0 {
		return nil, apperrors.BadRequest("a regimen needs at least one drug", nil)
	}

	regimen := &model.Regimen{
		Name:        req.Name,
		Description: req.Description,
		Line:        req.Line,
		Status:      model.RecordStatusActive,
		Drugs:       make([]model.RegimenDrug, 0, len(req.Drugs)),
	}

	seen := make(map[uuid.UUID]bool, len(req.Drugs))
	for _, d := range req.Drugs {
		drugID, err := uuid.Parse(d.DrugID)
		if err != nil {
			return nil, apperrors.BadRequest("invalid drug_id", err)
		}
		if seen[drugID] {
			return nil, apperrors.BadRequest(fmt.Sprintf("drug %s is listed more than once", drugID), nil)
		}
		seen[drugID] = true

		drug, err := s.GetDrug(ctx, drugID)
		if err != nil {
			return nil, err
		}
		if !drug.IsActive() {
			return nil, apperrors.BadRequest(fmt.Sprintf("drug %s is inactive", drug.Name), nil)
		}

		regimen.Drugs = append(regimen.Drugs, model.RegimenDrug{
			DrugID:    drugID,
			DrugName:  drug.Name,
			Dosage:    d.Dosage,
			Frequency: d.Frequency,
		})
	}

	if err := s.repo.CreateRegimen(ctx, regimen); err != nil {
		return nil, apperrors.FromWrite("regimen", "create", err)
	}
	return regimen, nil
}

func (s *Service) GetRegimen(ctx context.Context, id uuid.UUID) (*model.Regimen, error) {
	regimen, err := s.repo.GetRegimen(ctx, id)
	if err != nil {
		return nil, apperrors.FromLookup("regimen", err)
	}
	return regimen, nil
}

func (s *Service) ListRegimens(ctx context.Context, status model.RecordStatus) ([]*model.Regimen, error) {
	return s.repo.ListRegimens(ctx, status)
}

// StartPrescription puts the patient on a regimen. Any prescription the
// patient is currently on is ended as of the new start date.
func (s *Service) StartPrescription(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid patient_id", err)
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid doctor_id", err)
	}
	regimenID, err := uuid.Parse(req.RegimenID)
	if err != nil {
		return nil, apperrors.BadRequest("invalid regimen_id", err)
	}
	startDate, err := time.ParseInLocation(dateLayout, req.StartDate, time.UTC)
	if err != nil {
		return nil, apperrors.BadRequest("start_date must be formatted YYYY-MM-DD", err)
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, apperrors.FromLookup("patient", err)
	}
	if !patient.IsActive() {
		return nil, apperrors.BadRequest("patient is inactive", nil)
	}
	doctor, err := s.doctors.Get(ctx, doctorID)
	if err != nil {
		return nil, apperrors.FromLookup("doctor", err)
	}
	if !doctor.IsActive() {
		return nil, apperrors.BadRequest("doctor is inactive", nil)
	}

	regimen, err := s.GetRegimen(ctx, regimenID)
	if err != nil {
		return nil, err
	}
	if !regimen.IsActive() {
		return nil, apperrors.BadRequest("regimen is inactive", nil)
	}
	for _, d := range regimen.Drugs {
		drug, err := s.GetDrug(ctx, d.DrugID)
		if err != nil {
			return nil, err
		}
		if !drug.IsActive() {
			return nil, apperrors.BadRequest(fmt.Sprintf("regimen drug %s is inactive", drug.Name), nil)
		}
	}

	prescription := &model.Prescription{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		RegimenID: regimen.ID,
		StartDate: startDate,
		Notes:     req.Notes,
	}
	if err := s.repo.StartPrescription(ctx, prescription); err != nil {
		return nil, apperrors.FromWrite("prescription", "start", err)
	}

	s.emit(ctx, model.EventPrescriptionStarted, PrescriptionEvent{
		PrescriptionID: prescription.ID,
		PatientID:      prescription.PatientID,
		DoctorID:       prescription.DoctorID,
		RegimenID:      prescription.RegimenID,
		RegimenName:    regimen.Name,
		StartDate:      startDate.Format(dateLayout),
	})
	return prescription, nil
}

func (s *Service) EndPrescription(ctx context.Context, id uuid.UUID) (*model.Prescription, error) {
	prescription, err := s.repo.GetPrescription(ctx, id)
	if err != nil {
		return nil, apperrors.FromLookup("prescription", err)
	}
	if !prescription.Status.CanTransitionTo(model.PrescriptionStatusEnded) {
		return nil, apperrors.Conflict("prescription has already ended", nil)
	}

	endDate := s.now().UTC().Truncate(24 * time.Hour)
	if endDate.Before(prescription.StartDate) {
		endDate = prescription.StartDate
	}
	if err := s.repo.EndPrescription(ctx, id, endDate); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Conflict("prescription has already ended", err)
		}
		return nil, fmt.Errorf("failed to end prescription: %w", err)
	}

	prescription.Status = model.PrescriptionStatusEnded
	prescription.EndDate = &endDate

	s.emit(ctx, model.EventPrescriptionEnded, PrescriptionEvent{
		PrescriptionID: prescription.ID,
		PatientID:      prescription.PatientID,
		DoctorID:       prescription.DoctorID,
		RegimenID:      prescription.RegimenID,
		StartDate:      prescription.StartDate.Format(dateLayout),
		EndDate:        endDate.Format(dateLayout),
	})
	return prescription, nil
}

func (s *Service) ListPrescriptions(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error) {
	if _, err := s.patients.Get(ctx, patientID); err != nil {
		return nil, apperrors.FromLookup("patient", err)
	}
	return s.repo.ListPrescriptions(ctx, patientID)
}

func (s *Service) emit(ctx context.Context, eventType string, payload PrescriptionEvent) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.log.Error(err, "failed to record prescription event",
			"event_type", eventType,
			"prescription_id", payload.PrescriptionID.String(),
		)
	}
}
