package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/internal/repository"
	apperrors "github.com/jwalitptl/hivcare-api/pkg/errors"
)

type Service struct {
	repo repository.PatientRepository
}

func NewService(repo repository.PatientRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	patient := &model.Patient{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		DateOfBirth: req.DateOfBirth,
		Gender:      req.Gender,
		Status:      model.RecordStatusActive,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, apperrors.FromWrite("patient", "create", err)
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.FromLookup("patient", err)
	}
	return patient, nil
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.GetPatient(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Email != nil {
		patient.Email = *req.Email
	}
	if req.Phone != nil {
		patient.Phone = *req.Phone
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Status != nil && *req.Status != patient.Status {
		if !patient.Status.CanTransitionTo(*req.Status) {
			return nil, apperrors.BadRequest("invalid patient status", nil)
		}
		patient.Status = *req.Status
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, apperrors.FromWrite("patient", "update", err)
	}
	return patient, nil
}

func (s *Service) DeactivatePatient(ctx context.Context, id uuid.UUID) error {
	inactive := model.RecordStatusInactive
	_, err := s.UpdatePatient(ctx, id, &model.UpdatePatientRequest{Status: &inactive})
	return err
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, int, error) {
	patients, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}
