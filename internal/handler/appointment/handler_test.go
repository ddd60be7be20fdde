package appointment

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/hivcare-api/internal/handler/handlertest"
	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/pkg/auth"
	apperrors "github.com/jwalitptl/hivcare-api/pkg/errors"
)

type fakeService struct {
	slots      []string
	slotsErr   error
	lastQuery  model.SlotQuery
	created    *model.CreateAppointmentRequest
	createErr  error
	filters    *model.AppointmentFilters
	cancelled  string
	transition error
}

func (f *fakeService) GetAvailableSlots(_ context.Context, q model.SlotQuery) ([]string, error) {
	f.lastQuery = q
	return f.slots, f.slotsErr
}

func (f *fakeService) CreateAppointment(_ context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	f.created = req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &model.Appointment{Base: model.Base{ID: uuid.New()}, Status: model.AppointmentStatusPending, ReferenceCode: "APT-7Q2K9X"}, nil
}

func (f *fakeService) GetAppointment(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	return nil, apperrors.NotFound("appointment", nil)
}

func (f *fakeService) ListAppointments(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error) {
	f.filters = filters
	return []*model.Appointment{}, 0, nil
}

func (f *fakeService) ConfirmAppointment(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	if f.transition != nil {
		return nil, f.transition
	}
	return &model.Appointment{Base: model.Base{ID: id}, Status: model.AppointmentStatusConfirmed}, nil
}

func (f *fakeService) CancelAppointment(_ context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	f.cancelled = reason
	return &model.Appointment{Base: model.Base{ID: id}, Status: model.AppointmentStatusCancelled}, nil
}

func (f *fakeService) CompleteAppointment(_ context.Context, id uuid.UUID, notes string) (*model.Appointment, error) {
	return &model.Appointment{Base: model.Base{ID: id}, Status: model.AppointmentStatusCompleted}, nil
}

func setup(t *testing.T, svc *fakeService) *handlertest.Env {
	env := handlertest.New(t)
	NewHandler(svc).RegisterRoutes(env.API, env.Auth)
	return env
}

var (
	doctorID  = uuid.MustParse("6f1d2b0e-8a55-4c1e-9a4b-0c5f3e2d1a10")
	serviceID = uuid.MustParse("0b7e7c58-1f0d-4d8a-a6b2-3f4e5d6c7b8a")
)

func TestGetDoctorSlots(t *testing.T) {
	svc := &fakeService{slots: []string{"09:00", "09:30", "10:30", "11:00", "11:30"}}
	env := setup(t, svc)

	res := env.Do(t, http.MethodGet, "/api/v1/doctors/"+doctorID.String()+"/slots?date=2026-03-02&service_id="+serviceID.String(), nil, "")

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "success", res.Status)
	var slots []string
	res.DecodeData(t, &slots)
	assert.Equal(t, []string{"09:00", "09:30", "10:30", "11:00", "11:30"}, slots)
	assert.Equal(t, doctorID, svc.lastQuery.DoctorID)
	assert.Equal(t, serviceID, svc.lastQuery.ServiceID)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), svc.lastQuery.Date)
}

func TestGetSlots_QueryForm(t *testing.T) {
	svc := &fakeService{slots: []string{}}
	env := setup(t, svc)

	res := env.Do(t, http.MethodGet, "/api/v1/appointments/slots?doctor_id="+doctorID.String()+"&date=2026-03-01&service_id="+serviceID.String(), nil, "")

	require.Equal(t, http.StatusOK, res.Code)
	assert.JSONEq(t, `[]`, string(res.Data))
}

func TestGetSlots_Errors(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		err     error
		code    int
		message string
	}{
		{
			name:    "malformed date",
			path:    "/api/v1/doctors/" + doctorID.String() + "/slots?date=02-03-2026&service_id=" + serviceID.String(),
			code:    http.StatusBadRequest,
			message: "date must be formatted YYYY-MM-DD",
		},
		{
			name:    "malformed doctor",
			path:    "/api/v1/doctors/not-a-uuid/slots?date=2026-03-02&service_id=" + serviceID.String(),
			code:    http.StatusBadRequest,
			message: "invalid doctor_id",
		},
		{
			name:    "missing service",
			path:    "/api/v1/doctors/" + doctorID.String() + "/slots?date=2026-03-02",
			code:    http.StatusBadRequest,
			message: "invalid service_id",
		},
		{
			name:    "unknown doctor",
			path:    "/api/v1/doctors/" + doctorID.String() + "/slots?date=2026-03-02&service_id=" + serviceID.String(),
			err:     apperrors.NotFound("doctor", nil),
			code:    http.StatusNotFound,
			message: "doctor not found",
		},
		{
			name:    "unknown service",
			path:    "/api/v1/doctors/" + doctorID.String() + "/slots?date=2026-03-02&service_id=" + serviceID.String(),
			err:     apperrors.NotFound("service", nil),
			code:    http.StatusNotFound,
			message: "service not found",
		},
		{
			name:    "store failure",
			path:    "/api/v1/doctors/" + doctorID.String() + "/slots?date=2026-03-02&service_id=" + serviceID.String(),
			err:     context.DeadlineExceeded,
			code:    http.StatusInternalServerError,
			message: "internal server error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setup(t, &fakeService{slotsErr: tt.err})

			res := env.Do(t, http.MethodGet, tt.path, nil, "")

			assert.Equal(t, tt.code, res.Code)
			assert.Equal(t, "error", res.Status)
			assert.Equal(t, tt.message, res.Message)
		})
	}
}

func TestCreateAppointment(t *testing.T) {
	svc := &fakeService{}
	env := setup(t, svc)
	body := map[string]string{
		"doctor_id":  doctorID.String(),
		"patient_id": uuid.NewString(),
		"service_id": serviceID.String(),
		"date":       "2026-03-02",
		"start_time": "10:30",
	}

	res := env.Do(t, http.MethodPost, "/api/v1/appointments", body, "")
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = env.Do(t, http.MethodPost, "/api/v1/appointments", body, env.Token(t, auth.RoleStaff))
	require.Equal(t, http.StatusCreated, res.Code)
	var created model.Appointment
	res.DecodeData(t, &created)
	assert.Equal(t, "APT-7Q2K9X", created.ReferenceCode)
	assert.Equal(t, "10:30", svc.created.StartTime)
}

func TestCreateAppointment_Validation(t *testing.T) {
	env := setup(t, &fakeService{})

	res := env.Do(t, http.MethodPost, "/api/v1/appointments", map[string]string{
		"doctor_id":  doctorID.String(),
		"patient_id": "nope",
		"service_id": serviceID.String(),
		"date":       "2026-03-02",
		"start_time": "25:00",
	}, env.Token(t, auth.RoleStaff))

	assert.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Message, "patient_id")
	assert.Contains(t, res.Message, "start_time")
}

func TestCreateAppointment_Conflict(t *testing.T) {
	env := setup(t, &fakeService{createErr: apperrors.Conflict("time slot is no longer available", nil)})

	res := env.Do(t, http.MethodPost, "/api/v1/appointments", map[string]string{
		"doctor_id":  doctorID.String(),
		"patient_id": uuid.NewString(),
		"service_id": serviceID.String(),
		"date":       "2026-03-02",
		"start_time": "10:00",
	}, env.Token(t, auth.RoleStaff))

	assert.Equal(t, http.StatusConflict, res.Code)
	assert.Equal(t, "time slot is no longer available", res.Message)
}

func TestListAppointments_Filters(t *testing.T) {
	svc := &fakeService{}
	env := setup(t, svc)

	res := env.Do(t, http.MethodGet, "/api/v1/appointments?doctor_id="+doctorID.String()+"&status=confirmed&start_date=2026-03-01&page=2&page_size=10", nil, "")

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, doctorID, svc.filters.DoctorID)
	assert.Equal(t, model.AppointmentStatusConfirmed, svc.filters.Status)
	require.NotNil(t, svc.filters.StartDate)
	assert.Nil(t, svc.filters.EndDate)
	assert.Equal(t, 2, svc.filters.Page)
	assert.Equal(t, 10, svc.filters.PageSize)

	res = env.Do(t, http.MethodGet, "/api/v1/appointments?status=lost", nil, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestGetAppointment(t *testing.T) {
	env := setup(t, &fakeService{})

	res := env.Do(t, http.MethodGet, "/api/v1/appointments/"+uuid.NewString(), nil, "")
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = env.Do(t, http.MethodGet, "/api/v1/appointments/xyz", nil, "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestTransitions(t *testing.T) {
	svc := &fakeService{}
	env := setup(t, svc)
	token := env.Token(t, auth.RoleStaff)
	id := uuid.NewString()

	res := env.Do(t, http.MethodPost, "/api/v1/appointments/"+id+"/confirm", nil, token)
	assert.Equal(t, http.StatusOK, res.Code)

	res = env.Do(t, http.MethodPost, "/api/v1/appointments/"+id+"/cancel", map[string]string{}, token)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = env.Do(t, http.MethodPost, "/api/v1/appointments/"+id+"/cancel", map[string]string{"reason": "patient travelling"}, token)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "patient travelling", svc.cancelled)

	res = env.Do(t, http.MethodPost, "/api/v1/appointments/"+id+"/complete", nil, token)
	assert.Equal(t, http.StatusOK, res.Code)

	svc.transition = apperrors.Conflict("cannot move appointment from cancelled to confirmed", nil)
	res = env.Do(t, http.MethodPost, "/api/v1/appointments/"+id+"/confirm", nil, token)
	assert.Equal(t, http.StatusConflict, res.Code)
}
