package appointment

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/hivcare-api/internal/handler"
	"github.com/jwalitptl/hivcare-api/internal/middleware"
	"github.com/jwalitptl/hivcare-api/internal/model"
	appointmentsvc "github.com/jwalitptl/hivcare-api/internal/service/appointment"
	apperrors "github.com/jwalitptl/hivcare-api/pkg/errors"
)

// Service is the part of the appointment service the handler drives.
type Service interface {
	GetAvailableSlots(ctx context.Context, q model.SlotQuery) ([]string, error)
	CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, int, error)
	ConfirmAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	CancelAppointment(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error)
	CompleteAppointment(ctx context.Context, id uuid.UUID, notes string) (*model.Appointment, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	r.GET("/doctors/:id/slots", h.GetDoctorSlots)

	appointments := r.Group("/appointments")
	{
		appointments.GET("", h.ListAppointments)
		appointments.GET("/slots", h.GetSlots)
		appointments.GET("/:id", h.GetAppointment)

		protected := appointments.Group("", auth.Authenticate())
		protected.POST("", h.CreateAppointment)
		protected.POST("/:id/confirm", h.ConfirmAppointment)
		protected.POST("/:id/cancel", h.CancelAppointment)
		protected.POST("/:id/complete", h.CompleteAppointment)
	}
}

// GetDoctorSlots serves GET /doctors/:id/slots?date=&service_id=.
func (h *Handler) GetDoctorSlots(c *gin.Context) {
	h.slots(c, c.Param("id"))
}

// GetSlots serves GET /appointments/slots?doctor_id=&date=&service_id=.
func (h *Handler) GetSlots(c *gin.Context) {
	h.slots(c, c.Query("doctor_id"))
}

func (h *Handler) slots(c *gin.Context, rawDoctorID string) {
	doctorID, err := uuid.Parse(rawDoctorID)
	if err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid doctor_id", err))
		return
	}
	serviceID, err := uuid.Parse(c.Query("service_id"))
	if err != nil {
		handler.Fail(c, apperrors.BadRequest("invalid service_id", err))
		return
	}
	date, err := appointmentsvc.ParseDate(c.Query("date"))
	if err != nil {
		handler.Fail(c, err)
		return
	}

	slots, err := h.service.GetAvailableSlots(c.Request.Context(), model.SlotQuery{
		DoctorID:  doctorID,
		ServiceID: serviceID,
		Date:      date,
	})
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(slots))
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appointment, err := h.service.CreateAppointment(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, handler.NewSuccessResponse(appointment))
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	appointment, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

type listQuery struct {
	Status    string `form:"status" binding:"omitempty,oneof=pending confirmed completed cancelled"`
	StartDate string `form:"start_date" binding:"omitempty,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"omitempty,datetime=2006-01-02"`
	model.Pagination
}

func (h *Handler) ListAppointments(c *gin.Context) {
	var q listQuery
	if !handler.BindQuery(c, &q) {
		return
	}
	doctorID, ok := handler.ParseQueryID(c, "doctor_id")
	if !ok {
		return
	}
	patientID, ok := handler.ParseQueryID(c, "patient_id")
	if !ok {
		return
	}

	filters := &model.AppointmentFilters{
		DoctorID:   doctorID,
		PatientID:  patientID,
		Status:     model.AppointmentStatus(q.Status),
		StartDate:  optionalDate(q.StartDate),
		EndDate:    optionalDate(q.EndDate),
		Pagination: q.Pagination.Normalize(),
	}

	appointments, total, err := h.service.ListAppointments(c.Request.Context(), filters)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(handler.NewPage(appointments, total, filters.Pagination)))
}

func (h *Handler) ConfirmAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}

	appointment, err := h.service.ConfirmAppointment(c.Request.Context(), id)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.CancelAppointmentRequest
	if !handler.BindJSON(c, &req) {
		return
	}

	appointment, err := h.service.CancelAppointment(c.Request.Context(), id, req.Reason)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

func (h *Handler) CompleteAppointment(c *gin.Context) {
	id, ok := handler.ParseID(c, "id")
	if !ok {
		return
	}
	var req model.CompleteAppointmentRequest
	if c.Request.ContentLength != 0 && !handler.BindJSON(c, &req) {
		return
	}

	appointment, err := h.service.CompleteAppointment(c.Request.Context(), id, req.ConsultationNotes)
	if err != nil {
		handler.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(appointment))
}

// optionalDate expects a value already validated by the binding.
func optionalDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	date, err := appointmentsvc.ParseDate(value)
	if err != nil {
		return nil
	}
	return &date
}
