package catalog

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
	CreateService(ctx context.Context, req *model.CreateServiceRequest) (*model.Service, error)
	GetService(ctx context.Context, id uuid.UUID) (*model.Service, error)
	UpdateService(ctx context.Context, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error)
	DeactivateService(ctx context.Context, id uuid.UUID) error
	ListServices(ctx context.Context, status model.RecordStatus) ([]*model.Service, error)
}

// Handler exposes the bookable service catalog under /services.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authz *middleware.AuthMiddleware) {
	services := r.Group("/services")
	{
		services.GET("", h.ListServices)
		services.GET("/:id", h.GetService)

		admin := services.Group("", authz.Authenticate(), authz.RequireRole(auth.RoleAdmin))
		admin.POST("", h.CreateService)
		admin.PUT("/:id", h.UpdateService)
		admin.DELETE("/:id", h.DeactivateService)
	}
}

func (h *Handler) CreateService(c *gin.Context) {
	var req model.CreateServiceRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	service, err := h.service.CreateService(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(service))
}

func (h *Handler) GetService(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	service, err := h.service.GetService(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(service))
}

func (h *Handler) UpdateService(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateServiceRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	service, err := h.service.UpdateService(c.Request.Context(), id, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(service))
}

func (h *Handler) DeactivateService(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeactivateService(c.Request.Context(), id); err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"id": id, "status": model.RecordStatusInactive}))
}

type listQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

func (h *Handler) ListServices(c *gin.Context) {
	var q listQuery
	if !handler.BindQuery(c, &q) {
		return
	}

	services, err := h.service.ListServices(c.Request.Context(), model.RecordStatus(q.Status))
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(services))
}
