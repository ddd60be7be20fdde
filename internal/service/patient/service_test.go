package patient

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

type memPatientRepo struct {
	rows map[uuid.UUID]model.Patient
}

func (r *memPatientRepo) Create(_ context.Context, p *model.Patient) error {
	for _, existing := range r.rows {
		if existing.Email == p.Email {
			return apperrors.ErrDuplicate
		}
	}
	p.ID = uuid.New()
	r.rows[p.ID] = *p
	return nil
}

func (r *memPatientRepo) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := r.rows[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &p, nil
}

func (r *memPatientRepo) Update(_ context.Context, p *model.Patient) error {
	r.rows[p.ID] = *p
	return nil
}

func (r *memPatientRepo) List(context.Context, *model.PatientFilters) ([]*model.Patient, int, error) {
	out := make([]*model.Patient, 0, len(r.rows))
	for _, p := range r.rows {
		p := p
		out = append(out, &p)
	}
	return out, len(out), nil
}

func TestService_PatientLifecycle(t *testing.T) {
	repo := &memPatientRepo{rows: map[uuid.UUID]model.Patient{}}
	svc := NewService(repo)
	ctx := context.Background()

	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	created, err := svc.CreatePatient(ctx, &model.CreatePatientRequest{
		Name:        "Achieng Otieno",
		Email:       "achieng@example.test",
		DateOfBirth: &dob,
		Gender:      "female",
	})
	require.NoError(t, err)
	assert.True(t, created.IsActive())

	phone := "+254700000000"
	updated, err := svc.UpdatePatient(ctx, created.ID, &model.UpdatePatientRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "Achieng Otieno", updated.Name)

	require.NoError(t, svc.DeactivatePatient(ctx, created.ID))
	got, err := svc.GetPatient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RecordStatusInactive, got.Status)

	list, total, err := svc.ListPatients(ctx, &model.PatientFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, list, 1)
}

func TestService_CreatePatientDuplicateEmail(t *testing.T) {
	repo := &memPatientRepo{rows: map[uuid.UUID]model.Patient{}}
	svc := NewService(repo)
	req := &model.CreatePatientRequest{Name: "A", Email: "a@example.test"}

	_, err := svc.CreatePatient(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.CreatePatient(context.Background(), req)
	var appErr *apperrors.AppError
	require.True(t, apperrors.As(err, &appErr))
	assert.Equal(t, apperrors.CodeConflict, appErr.Code)
}

func TestService_UpdatePatientNotFound(t *testing.T) {
	svc := NewService(&memPatientRepo{rows: map[uuid.UUID]model.Patient{}})

	name := "B"
	_, err := svc.UpdatePatient(context.Background(), uuid.New(), &model.UpdatePatientRequest{Name: &name})
	assert.True(t, apperrors.IsNotFound(err))
}
