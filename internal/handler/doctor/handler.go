package doctor

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
	CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	UpdateDoctor(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error)
	DeactivateDoctor(ctx context.Context, id uuid.UUID) error
	ListDoctors(ctx context.Context, filters *model.DoctorFilters) ([]*model.Doctor, int, error)
	GetWorkingHours(ctx context.Context, doctorID uuid.UUID) ([]*model.WorkingHours, error)
	SetWorkingHours(ctx context.Context, doctorID uuid.UUID, req *model.SetWorkingHoursRequest) ([]*model.WorkingHours, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/:id", h.GetDoctor)
		doctors.GET("/:id/working-hours", h.GetWorkingHours)

		admin := doctors.Group("", authz.Authenticate(), authz.RequireRole(auth.RoleAdmin))
		admin.POST("", h.CreateDoctor)
		admin.PUT("/:id", h.UpdateDoctor)
		admin.DELETE("/:id", h.DeactivateDoctor)
		admin.PUT("/:id/working-hours", h.SetWorkingHours)
	}
}

func (h *Handler) CreateDoctor(c *gin.Context) {
	var req model.CreateDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.CreateDoctor(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(doctor))
}

func (h *Handler) GetDoctor(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	doctor, err := h.service.GetDoctor(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctor))
}

func (h *Handler) UpdateDoctor(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateDoctorRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	doctor, err := h.service.UpdateDoctor(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctor))
}

func (h *Handler) DeactivateDoctor(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeactivateDoctor(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"id": id, "status": model.RecordStatusInactive}))
}

type listQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
	Search string `form:"search" binding:"max=100"`
	model.Pagination
}

func (h *Handler) ListDoctors(c *gin.Context) {
	var q listQuery
	if !handler.BindQuery(c, &q) {
		return
	}
	filters := &model.DoctorFilters{
		Status:     model.RecordStatus(q.Status),
		Search:     q.Search,
		Pagination: q.Pagination.Normalize(),
	}

	doctors, total, err := h.service.ListDoctors(c.Request.Context(), filters)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(handler.NewPage(doctors, total, filters.Pagination)))
}

func (h *Handler) GetWorkingHours(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	hours, err := h.service.GetWorkingHours(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(hours))
}

// SetWorkingHours replaces the doctor's whole weekly schedule.
func (h *Handler) SetWorkingHours(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.SetWorkingHoursRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	hours, err := h.service.SetWorkingHours(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(hours))
}
