package arv

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hivcare-api/internal/handler"
	"github.com/jwalitptl/hivcare-api/internal/middleware"
	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/pkg/auth"
)

type Service interface {
	CreateDrug(ctx context.Context, req *model.CreateDrugRequest) (*model.ARVDrug, error)
	GetDrug(ctx context.Context, id uuid.UUID) (*model.ARVDrug, error)
	UpdateDrug(ctx context.Context, id uuid.UUID, req *model.UpdateDrugRequest) (*model.ARVDrug, error)
	DeactivateDrug(ctx context.Context, id uuid.UUID) error
	ListDrugs(ctx context.Context, status model.RecordStatus) ([]*model.ARVDrug, error)
	CreateRegimen(ctx context.Context, req *model.CreateRegimenRequest) (*model.Regimen, error)
	GetRegimen(ctx context.Context, id uuid.UUID) (*model.Regimen, error)
	ListRegimens(ctx context.Context, status model.RecordStatus) ([]*model.Regimen, error)
	StartPrescription(ctx context.Context, req *model.CreatePrescriptionRequest) (*model.Prescription, error)
	EndPrescription(ctx context.Context, id uuid.UUID) (*model.Prescription, error)
	ListPrescriptions(ctx context.Context, patientID uuid.UUID) ([]*model.Prescription, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	r.GET("/patients/:id/prescriptions", h.ListPrescriptions)

	arv := r.Group("/arv")
	{
		arv.GET("/drugs", h.ListDrugs)
		arv.GET("/drugs/:id", h.GetDrug)
		arv.GET("/regimens", h.ListRegimens)
		arv.GET("/regimens/:id", h.GetRegimen)

		admin := arv.Group("", authz.Authenticate(), authz.RequireRole(auth.RoleAdmin))
		admin.POST("/drugs", h.CreateDrug)
		admin.PUT("/drugs/:id", h.UpdateDrug)
		admin.DELETE("/drugs/:id", h.DeactivateDrug)
		admin.POST("/regimens", h.CreateRegimen)

		prescribers := arv.Group("/prescriptions", authz.Authenticate(), authz.RequireRole(auth.RoleDoctor, auth.RoleAdmin))
		prescribers.POST("", h.StartPrescription)
		prescribers.POST("/:id/end", h.EndPrescription)
	}
}

func (h *Handler) CreateDrug(c *gin.Context) {
	var req model.CreateDrugRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	drug, err := h.service.CreateDrug(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(drug))
}

func (h *Handler) GetDrug(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	drug, err := h.service.GetDrug(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(drug))
}

func (h *Handler) UpdateDrug(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateDrugRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	drug, err := h.service.UpdateDrug(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(drug))
}

func (h *Handler) DeactivateDrug(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeactivateDrug(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"id": id, "status": model.RecordStatusInactive}))
}

type statusQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

func (h *Handler) ListDrugs(c *gin.Context) {
	var q statusQuery
	if !handler.BindQuery(c, &q) {
		return
	}

	drugs, err := h.service.ListDrugs(c.Request.Context(), model.RecordStatus(q.Status))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(drugs))
}

func (h *Handler) CreateRegimen(c *gin.Context) {
	var req model.CreateRegimenRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	regimen, err := h.service.CreateRegimen(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(regimen))
}

func (h *Handler) GetRegimen(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	regimen, err := h.service.GetRegimen(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(regimen))
}

func (h *Handler) ListRegimens(c *gin.Context) {
	var q statusQuery
	if !handler.BindQuery(c, &q) {
		return
	}

	regimens, err := h.service.ListRegimens(c.Request.Context(), model.RecordStatus(q.Status))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(regimens))
}

// StartPrescription puts a patient on a regimen, ending any active one.
func (h *Handler) StartPrescription(c *gin.Context) {
	var req model.CreatePrescriptionRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	prescription, err := h.service.StartPrescription(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(prescription))
}

func (h *Handler) EndPrescription(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	prescription, err := h.service.EndPrescription(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(prescription))
}

func (h *Handler) ListPrescriptions(c *gin.Context) {
	patientID, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	prescriptions, err := h.service.ListPrescriptions(c.Request.Context(), patientID)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(prescriptions))
}
