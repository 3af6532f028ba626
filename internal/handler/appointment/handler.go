package appointment

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
	"github.com/kientrank3/revita-scheduling-api/internal/service/booking"
	apperrors "github.com/kientrank3/revita-scheduling-api/pkg/errors"
	"github.com/kientrank3/revita-scheduling-api/pkg/httputil"
)

type Handler struct {
	service *booking.Service
}

func NewHandler(service *booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("/:id", h.GetAppointment)
		appointments.POST("/:id/cancel", h.CancelAppointment)
	}
}

// CreateAppointment is the direct reservation entry point. The request
// carries a fully-specified candidate; the availability the client saw
// is re-validated inside the reservation transaction either way.
func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error(), err))
		return
	}

	date, err := model.ParseDate(req.Date)
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid date format", err))
		return
	}

	appointment, err := h.service.Reserve(c.Request.Context(), booking.Candidate{
		PatientProfileID: req.PatientProfileID,
		DoctorID:         req.DoctorID,
		ServiceID:        req.ServiceID,
		Date:             date,
		Slot:             model.TimeSlot{StartTime: req.StartTime, EndTime: req.EndTime},
	})
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	httputil.RespondWithCreated(c, appointment)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid appointment ID", err))
		return
	}

	appointment, err := h.service.GetAppointment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointment)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid appointment ID", err))
		return
	}

	appointment, err := h.service.CancelAppointment(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, appointment)
}
