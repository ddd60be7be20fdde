package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hivcare-api/internal/model"
	apperrors "github.com/jwalitptl/hivcare-api/pkg/errors"
)

type memServiceRepo struct {
	rows  map[uuid.UUID]model.Service
	gets  int
	dupes bool
}

func newMemServiceRepo() *memServiceRepo {
	return &memServiceRepo{rows: map[uuid.UUID]model.Service{}}
}

func (r *memServiceRepo) Create(_ context.Context, s *model.Service) error {
	if r.dupes {
		return apperrors.ErrDuplicate
	}
	s.ID = uuid.New()
	r.rows[s.ID] = *s
	return nil
}

func (r *memServiceRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	r.gets++
	s, ok := r.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &s, nil
}

func (r *memServiceRepo) Update(_ context.Context, s *model.Service) error {
	if _, ok := r.rows[s.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.rows[s.ID] = *s
	return nil
}

func (r *memServiceRepo) List(_ context.Context, status model.RecordStatus) ([]*model.Service, error) {
	out := make([]*model.Service, 0)
	for _, s := range r.rows {
		if status == "" || s.Status == status {
			s := s
			out = append(out, &s)
		}
	}
	return out, nil
}

func TestService_GetServiceUsesCache(t *testing.T) {
	repo := newMemServiceRepo()
	svc := NewService(repo, time.Minute, time.Minute)
	ctx := context.Background()

	created, err := svc.CreateService(ctx, &model.CreateServiceRequest{Name: "Viral load review", Duration: 30})
	require.NoError(t, err)
	assert.Equal(t, model.RecordStatusActive, created.Status)

	for i := 0; i < 3; i++ {
		got, err := svc.GetService(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, 30, got.Duration)
	}
	assert.Zero(t, repo.gets)
}

func TestService_UpdateEvictsCache(t *testing.T) {
	repo := newMemServiceRepo()
	svc := NewService(repo, time.Minute, time.Minute)
	ctx := context.Background()

	created, err := svc.CreateService(ctx, &model.CreateServiceRequest{Name: "Counselling", Duration: 30})
	require.NoError(t, err)

	duration := 45
	_, err = svc.UpdateService(ctx, created.ID, &model.UpdateServiceRequest{Duration: &duration})
	require.NoError(t, err)

	got, err := svc.GetService(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, got.Duration)
}

func TestService_GetServiceNotFound(t *testing.T) {
	svc := NewService(newMemServiceRepo(), time.Minute, time.Minute)

	_, err := svc.GetService(context.Background(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestService_Deactivate(t *testing.T) {
	repo := newMemServiceRepo()
	svc := NewService(repo, time.Minute, time.Minute)
	ctx := context.Background()

	created, err := svc.CreateService(ctx, &model.CreateServiceRequest{Name: "Adherence check", Duration: 15})
	require.NoError(t, err)

	require.NoError(t, svc.DeactivateService(ctx, created.ID))
	got, err := svc.GetService(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive())

	active, err := svc.ListServices(ctx, model.RecordStatusActive)
	require.NoError(t, err)
	assert.Empty(t, active)

	// Deactivating twice is a no-op.
	assert.NoError(t, svc.DeactivateService(ctx, created.ID))
}

func TestService_CreateDuplicate(t *testing.T) {
	repo := newMemServiceRepo()
	repo.dupes = true
	svc := NewService(repo, time.Minute, time.Minute)

	_, err := svc.CreateService(context.Background(), &model.CreateServiceRequest{Name: "Counselling", Duration: 30})
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}
