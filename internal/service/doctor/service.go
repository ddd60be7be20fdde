package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/internal/repository"
	"github.com/jwalitptl/hivcare-api/internal/scheduling"
	apperrors "github.com/jwalitptl/hivcare-api/pkg/errors"
	"github.com/jwalitptl/hivcare-api/pkg/security"
)

type Service struct {
	repo   repository.DoctorRepository
	hours  repository.WorkingHoursRepository
	hasher security.PasswordHasher
}

func NewService(repo repository.DoctorRepository, hours repository.WorkingHoursRepository, hasher security.PasswordHasher) *Service {
	return &Service{
		repo:   repo,
		hours:  hours,
		hasher: hasher,
	}
}

func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	doctor := &model.Doctor{
		Name:      req.Name,
		Email:     req.Email,
		Specialty: req.Specialty,
		Status:    model.RecordStatusActive,
	}

	if req.Password != "" {
		hash, err := s.hasher.Hash(req.Password)
		if err != nil {
			switch {
			case apperrors.Is(err, security.ErrPasswordShort):
				return nil, apperrors.BadRequest(fmt.Sprintf("password must be at least %d characters", security.MinPasswordLen), err)
			case apperrors.Is(err, security.ErrPasswordLong):
				return nil, apperrors.BadRequest(fmt.Sprintf("password must be at most %d bytes", security.MaxPasswordLen), err)
			}
			return nil, err
		}
		doctor.PasswordHash = hash
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, apperrors.FromWrite("doctor", "create", err)
	}
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.FromLookup("doctor", err)
	}
	return doctor, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Email != nil {
		doctor.Email = *req.Email
	}
	if req.Specialty != nil {
		doctor.Specialty = *req.Specialty
	}
	if req.Status != nil && *req.Status != doctor.Status {
		if !doctor.Status.CanTransitionTo(*req.Status) {
			return nil, apperrors.BadRequest("invalid doctor status", nil)
		}
		doctor.Status = *req.Status
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, apperrors.FromWrite("doctor", "update", err)
	}
	return doctor, nil
}

func (s *Service) DeactivateDoctor(ctx context.Context, id uuid.UUID) error {
	inactive := model.RecordStatusInactive
	_, err := s.UpdateDoctor(ctx, id, &model.UpdateDoctorRequest{Status: &inactive})
	return err
}

func (s *Service) ListDoctors(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int, error) {
	doctors, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	return doctors, total, nil
}

func (s *Service) GetWorkingHours(ctx context.Context, doctorID uuid.UUID) ([]*model.WorkingHours, error) {
	if _, err := s.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}
	hours, err := s.hours.ListForDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	return hours, nil
}

// SetWorkingHours replaces the doctor's weekly schedule. An empty request
// clears it.
func (s *Service) SetWorkingHours(ctx context.Context, doctorID uuid.UUID, req *model.SetWorkingHoursRequest) ([]*model.WorkingHours, error) {
	if _, err := s.GetDoctor(ctx, doctorID); err != nil {
		return nil, err
	}

	hours, err := buildWorkingHours(doctorID, req.Days)
	if err != nil {
		return nil, err
	}

	if err := s.hours.Replace(ctx, doctorID, hours); err != nil {
		return nil, apperrors.FromWrite("working hours", "replace", err)
	}
	return hours, nil
}

func buildWorkingHours(doctorID uuid.UUID, days []model.WorkingHoursEntry) ([]*model.WorkingHours, error) {
	seen := make(map[int]bool, len(days))
	hours := make([]*model.WorkingHours, 0, len(days))

	for _, d := range days {
		if d.DayOfWeek < 0 || d.DayOfWeek > 6 {
			return nil, apperrors.BadRequest(fmt.Sprintf("day_of_week %d is out of range", d.DayOfWeek), nil)
		}
		if seen[d.DayOfWeek] {
			return nil, apperrors.BadRequest(fmt.Sprintf("%s is listed more than once", time.Weekday(d.DayOfWeek)), nil)
		}
		seen[d.DayOfWeek] = true

		start, err := scheduling.ParseClock(d.StartTime)
		if err != nil {
			return nil, apperrors.BadRequest("invalid start_time", err)
		}
		end, err := scheduling.ParseClock(d.EndTime)
		if err != nil {
			return nil, apperrors.BadRequest("invalid end_time", err)
		}
		if start >= end {
			return nil, apperrors.BadRequest(fmt.Sprintf("%s: start_time must be before end_time", time.Weekday(d.DayOfWeek)), nil)
		}

		hours = append(hours, &model.WorkingHours{
			DoctorID:  doctorID,
			DayOfWeek: d.DayOfWeek,
			StartTime: start,
			EndTime:   end,
		})
	}
	return hours, nil
}
