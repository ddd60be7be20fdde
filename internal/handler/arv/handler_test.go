package arv

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
	regimen      *model.CreateRegimenRequest
	prescription *model.CreatePrescriptionRequest
	endErr       error
	patientID    uuid.UUID
}

func (f *fakeService) CreateDrug(_ context.Context, req *model.CreateDrugRequest) (*model.ARVDrug, error) {
	return &model.ARVDrug{Base: model.Base{ID: uuid.New()}, Name: req.Name, DrugClass: req.DrugClass, Status: model.RecordStatusActive}, nil
}

func (f *fakeService) GetDrug(_ context.Context, id uuid.UUID) (*model.ARVDrug, error) {
	return nil, apperrors.NotFound("drug", nil)
}

func (f *fakeService) UpdateDrug(_ context.Context, id uuid.UUID, req *model.UpdateDrugRequest) (*model.ARVDrug, error) {
	return &model.ARVDrug{Base: model.Base{ID: id}}, nil
}

func (f *fakeService) DeactivateDrug(_ context.Context, id uuid.UUID) error {
	return nil
}

func (f *fakeService) ListDrugs(_ context.Context, status model.RecordStatus) ([]*model.ARVDrug, error) {
	return []*model.ARVDrug{}, nil
}

func (f *fakeService) CreateRegimen(_ context.Context, req *model.CreateRegimenRequest) (*model.Regimen, error) {
	f.regimen = req
	return &model.Regimen{Base: model.Base{ID: uuid.New()}, Name: req.Name, Line: req.Line}, nil
}

func (f *fakeService) GetRegimen(_ context.Context, id uuid.UUID) (*model.Regimen, error) {
	return &model.Regimen{Base: model.Base{ID: id}}, nil
}

func (f *fakeService) ListRegimens(_ context.Context, status model.RecordStatus) ([]*model.Regimen, error) {
	return []*model.Regimen{}, nil
}

func (f *fakeService) StartPrescription(_ context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error) {
	f.prescription = req
	return &model.Prescription{Base: model.Base{ID: uuid.New()}, Status: model.PrescriptionStatusActive}, nil
}

func (f *fakeService) EndPrescription(_ context.Context, id uuid.UUID) (*model.Prescription, error) {
	if f.endErr != nil {
		return nil, f.endErr
	}
	end := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return &model.Prescription{Base: model.Base{ID: id}, Status: model.PrescriptionStatusEnded, EndDate: &end}, nil
}

func (f *fakeService) ListPrescriptions(_ context.Context, patientID uuid.UUID) ([]*model.Prescription, error) {
	f.patientID = patientID
	return []*model.Prescription{}, nil
}

func setup(t *testing.T) (*handlertest.Env, *fakeService) {
	svc := &fakeService{}
	env := handlertest.New(t)
	NewHandler(svc).RegisterRoutes(env.API, env.Auth)
	return env, svc
}

func TestCreateDrug(t *testing.T) {
	env, _ := setup(t)
	body := map[string]string{"name": "Dolutegravir", "drug_class": "INSTI", "strength": "50mg"}

	res := env.Do(t, http.MethodPost, "/api/v1/arv/drugs", body, env.Token(t, auth.RoleDoctor))
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = env.Do(t, http.MethodPost, "/api/v1/arv/drugs", body, env.Token(t, auth.RoleAdmin))
	assert.Equal(t, http.StatusCreated, res.Code)

	body["drug_class"] = "antibiotic"
	res = env.Do(t, http.MethodPost, "/api/v1/arv/drugs", body, env.Token(t, auth.RoleAdmin))
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestCreateRegimen_RequiresDrugs(t *testing.T) {
	env, svc := setup(t)
	admin := env.Token(t, auth.RoleAdmin)

	res := env.Do(t, http.MethodPost, "/api/v1/arv/regimens", map[string]interface{}{"name": "TLD", "line": "first", "drugs": []interface{}{}}, admin)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = env.Do(t, http.MethodPost, "/api/v1/arv/regimens", map[string]interface{}{
		"name": "TLD",
		"line": "first",
		"drugs": []map[string]string{
			{"drug_id": uuid.NewString(), "dosage": "1 tablet", "frequency": "once daily"},
		},
	}, admin)
	require.Equal(t, http.StatusCreated, res.Code)
	assert.Len(t, svc.regimen.Drugs, 1)
}

func TestPrescriptions(t *testing.T) {
	env, svc := setup(t)
	doctor := env.Token(t, auth.RoleDoctor)
	body := map[string]string{
		"patient_id": uuid.NewString(),
		"doctor_id":  uuid.NewString(),
		"regimen_id": uuid.NewString(),
		"start_date": "2026-03-02",
	}

	res := env.Do(t, http.MethodPost, "/api/v1/arv/prescriptions", body, env.Token(t, auth.RoleStaff))
	assert.Equal(t, http.StatusForbidden, res.Code)

	res = env.Do(t, http.MethodPost, "/api/v1/arv/prescriptions", body, doctor)
	require.Equal(t, http.StatusCreated, res.Code)
	assert.Equal(t, "2026-03-02", svc.prescription.StartDate)

	id := uuid.NewString()
	res = env.Do(t, http.MethodPost, "/api/v1/arv/prescriptions/"+id+"/end", nil, doctor)
	require.Equal(t, http.StatusOK, res.Code)
	var ended model.Prescription
	res.DecodeData(t, &ended)
	assert.Equal(t, model.PrescriptionStatusEnded, ended.Status)

	svc.endErr = apperrors.Conflict("prescription already ended", nil)
	res = env.Do(t, http.MethodPost, "/api/v1/arv/prescriptions/"+id+"/end", nil, doctor)
	assert.Equal(t, http.StatusConflict, res.Code)
}

func TestListPrescriptions(t *testing.T) {
	env, svc := setup(t)
	patientID := uuid.New()

	res := env.Do(t, http.MethodGet, "/api/v1/patients/"+patientID.String()+"/prescriptions", nil, "")

	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, patientID, svc.patientID)
}

func TestGetDrug_NotFound(t *testing.T) {
	env, _ := setup(t)

	res := env.Do(t, http.MethodGet, "/api/v1/arv/drugs/"+uuid.NewString(), nil, "")

	assert.Equal(t, http.StatusNotFound, res.Code)
}
