package doctor

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hivcare-api/internal/handler"
	"github.com/jwalitptl/hivcare-api/internal/handler/handlertest"
	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/internal/scheduling"
	"github.com/jwalitptl/hivcare-api/pkg/auth"
	apperrors "github.com/jwalitptl/hivcare-api/pkg/errors"
)

type fakeService struct {
	doctors map[uuid.UUID]*model.Doctor
	hours   *model.SetWorkingHoursRequest
	filters *model.DoctorFilters
}

func newFake() *fakeService {
	return &fakeService{doctors: map[uuid.UUID]*model.Doctor{}}
}

func (f *fakeService) CreateDoctor(_ context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	for _, d := range f.doctors {
		if d.Email == req.Email {
			return nil, apperrors.Conflict("doctor already exists", nil)
		}
	}
	d := &model.Doctor{Base: model.Base{ID: uuid.New()}, Name: req.Name, Email: req.Email, PasswordHash: "hash", Status: model.RecordStatusActive}
	f.doctors[d.ID] = d
	return d, nil
}

func (f *fakeService) GetDoctor(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	d, ok := f.doctors[id]
	if !ok {
		return nil, apperrors.NotFound("doctor", nil)
	}
	return d, nil
}

func (f *fakeService) UpdateDoctor(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	d, err := f.GetDoctor(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		d.Name = *req.Name
	}
	return d, nil
}

func (f *fakeService) DeactivateDoctor(ctx context.Context, id uuid.UUID) error {
	d, err := f.GetDoctor(ctx, id)
	if err != nil {
		return err
	}
	d.Status = model.RecordStatusInactive
	return nil
}

func (f *fakeService) ListDoctors(_ context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int, error) {
	f.filters = filters
	out := make([]*model.Doctor, 0, len(f.doctors))
	for _, d := range f.doctors {
		out = append(out, d)
	}
	return out, len(out), nil
}

func (f *fakeService) GetWorkingHours(_ context.Context, doctorID uuid.UUID) ([]*model.WorkingHours, error) {
	return []*model.WorkingHours{{
		DoctorID:  doctorID,
		DayOfWeek: 1,
		StartTime: scheduling.MustClock("09:00"),
		EndTime:   scheduling.MustClock("12:00"),
	}}, nil
}

func (f *fakeService) SetWorkingHours(_ context.Context, doctorID uuid.UUID, req *model.SetWorkingHoursRequest) ([]*model.WorkingHours, error) {
	f.hours = req
	return []*model.WorkingHours{}, nil
}

func setup(t *testing.T, svc *fakeService) *handlertest.Env {
	env := handlertest.New(t)
	NewHandler(svc).RegisterRoutes(env.API, env.Auth)
	return env
}

func TestCreateDoctor_RequiresAdmin(t *testing.T) {
	svc := newFake()
	env := setup(t, svc)
	body := map[string]string{"name": "Dr. Amani Otieno", "email": "amani@clinic.example", "specialty": "Infectious disease"}

	res := env.Do(t, http.MethodPost, "/api/v1/doctors", body, "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = env.Do(t, http.MethodPost, "/api/v1/doctors", body, env.Token(t, auth.RoleStaff))
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = env.Do(t, http.MethodPost, "/api/v1/doctors", body, env.Token(t, auth.RoleAdmin))
	require.Equal(t, http.StatusCreated, res.Code)
	assert.NotContains(t, string(res.Data), "hash")

	res = env.Do(t, http.MethodPost, "/api/v1/doctors", body, env.Token(t, auth.RoleAdmin))
	assert.Equal(t, http.StatusConflict, res.Code)
}

func TestCreateDoctor_Validation(t *testing.T) {
	env := setup(t, newFake())

	res := env.Do(t, http.MethodPost, "/api/v1/doctors", map[string]string{"name": "X", "email": "not-an-email"}, env.Token(t, auth.RoleAdmin))

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "email must be a valid email", res.Message)

	res = env.Do(t, http.MethodPost, "/api/v1/doctors", "{not json", env.Token(t, auth.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Equal(t, "invalid request", res.Message)
}

func TestGetUpdateDeactivateDoctor(t *testing.T) {
	svc := newFake()
	id := uuid.New()
	svc.doctors[id] = &model.Doctor{Base: model.Base{ID: id}, Name: "Dr. Old", Status: model.RecordStatusActive}
	env := setup(t, svc)
	admin := env.Token(t, auth.RoleAdmin)

	res := env.Do(t, http.MethodGet, "/api/v1/doctors/"+id.String(), nil, "")
	require.Equal(t, http.StatusOK, res.Code)

	res = env.Do(t, http.MethodPut, "/api/v1/doctors/"+id.String(), map[string]string{"name": "Dr. New"}, admin)
	require.Equal(t, http.StatusOK, res.Code)
	var updated model.Doctor
	res.DecodeData(t, &updated)
	assert.Equal(t, "Dr. New", updated.Name)

	res = env.Do(t, http.MethodDelete, "/api/v1/doctors/"+id.String(), nil, admin)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, model.RecordStatusInactive, svc.doctors[id].Status)

	res = env.Do(t, http.MethodGet, "/api/v1/doctors/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestListDoctors(t *testing.T) {
	svc := newFake()
	env := setup(t, svc)

	res := env.Do(t, http.MethodGet, "/api/v1/doctors?status=active&search=amani&page_size=500", nil, "")

	require.Equal(t, http.StatusOK, res.Code)
	var page handler.Page[model.Doctor]
	res.DecodeData(t, &page)
	assert.Equal(t, model.MaxPageSize, page.PageSize)
	assert.Equal(t, "amani", svc.filters.Search)
	assert.Equal(t, model.RecordStatusActive, svc.filters.Status)
}

func TestWorkingHours(t *testing.T) {
	svc := newFake()
	env := setup(t, svc)
	id := uuid.NewString()

	res := env.Do(t, http.MethodGet, "/api/v1/doctors/"+id+"/working-hours", nil, "")
	require.Equal(t, http.StatusOK, res.Code)
	assert.Contains(t, string(res.Data), `"start_time":"09:00"`)

	body := map[string]interface{}{"days": []map[string]interface{}{
		{"day_of_week": 0, "start_time": "08:00", "end_time": "12:00"},
		{"day_of_week": 1, "start_time": "09:00", "end_time": "17:00"},
	}}
	res = env.Do(t, http.MethodPut, "/api/v1/doctors/"+id+"/working-hours", body, env.Token(t, auth.RoleAdmin))
	require.Equal(t, http.StatusOK, res.Code)
	require.Len(t, svc.hours.Days, 2)
	assert.Equal(t, 0, svc.hours.Days[0].DayOfWeek)

	bad := map[string]interface{}{"days": []map[string]interface{}{
		{"day_of_week": 7, "start_time": "9am", "end_time": "17:00"},
	}}
	res = env.Do(t, http.MethodPut, "/api/v1/doctors/"+id+"/working-hours", bad, env.Token(t, auth.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Message, "day_of_week")
	assert.Contains(t, res.Message, "start_time")
}
