package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/internal/repository"
	apperrors "github.com/jwalitptl/hivcare-api/pkg/errors"
)

// Service manages the bookable medical services. Single-service reads are
// served from an in-process cache; writes through this service evict it.
type Service struct {
	repo  repository.ServiceRepository
	cache *cache.Cache
}

func NewService(repo repository.ServiceRepository, ttl, cleanup time.Duration) *Service {
	return &Service{
		repo:  repo,
		cache: cache.New(ttl, cleanup),
	}
}

func (s *Service) CreateService(ctx context.Context, req *model.CreateServiceRequest) (*model.Service, error) {
	svc := &model.Service{
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		Price:       req.Price,
		Status:      model.RecordStatusActive,
	}
	if err := s.repo.Create(ctx, svc); err != nil {
		return nil, apperrors.FromWrite("service", "create", err)
	}
	s.cache.SetDefault(svc.ID.String(), *svc)
	return svc, nil
}

// GetService returns the service regardless of status; callers that book
// against it check IsActive themselves.
func (s *Service) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	if cached, ok := s.cache.Get(id.String()); ok {
		svc := cached.(model.Service)
		return &svc, nil
	}

	svc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.FromLookup("service", err)
	}
	s.cache.SetDefault(id.String(), *svc)
	return svc, nil
}

func (s *Service) UpdateService(ctx context.Context, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	svc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.FromLookup("service", err)
	}

	if req.Name != nil {
		svc.Name = *req.Name
	}
	if req.Description != nil {
		svc.Description = *req.Description
	}
	if req.Duration != nil {
		svc.Duration = *req.Duration
	}
	if req.Price != nil {
		svc.Price = *req.Price
	}
	if req.Status != nil && *req.Status != svc.Status {
		if !svc.Status.CanTransitionTo(*req.Status) {
			return nil, apperrors.BadRequest("invalid service status", nil)
		}
		svc.Status = *req.Status
	}

	s.cache.Delete(id.String())
	if err := s.repo.Update(ctx, svc); err != nil {
		return nil, apperrors.FromWrite("service", "update", err)
	}
	return svc, nil
}

// DeactivateService is the soft delete.
func (s *Service) DeactivateService(ctx context.Context, id uuid.UUID) error {
	inactive := model.RecordStatusInactive
	svc, err := s.repo.Get(ctx, id)
	if err != nil {
		return apperrors.FromLookup("service", err)
	}
	if svc.Status == inactive {
		return nil
	}
	_, err = s.UpdateService(ctx, id, &model.UpdateServiceRequest{Status: &inactive})
	return err
}

func (s *Service) ListServices(ctx context.Context, status model.RecordStatus) ([]*model.Service, error) {
	services, err := s.repo.List(ctx, status)
	if err != nil {
		return nil, err
	}
	return services, nil
}
