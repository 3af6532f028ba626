package availability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
	"github.com/kientrank3/revita-scheduling-api/internal/service/availability"
	apperrors "github.com/kientrank3/revita-scheduling-api/pkg/errors"
	"github.com/kientrank3/revita-scheduling-api/pkg/httputil"
)

type Handler struct {
	service        *availability.Service
	maxGranularity time.Duration
}

func NewHandler(service *availability.Service, maxGranularity time.Duration) *Handler {
	return &Handler{service: service, maxGranularity: maxGranularity}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/specialties", h.ListSpecialties)
	r.GET("/doctors", h.ListDoctors)
	r.GET("/working-days", h.ListWorkingDays)
	r.GET("/services", h.ListServices)
	r.GET("/slots", h.ListSlots)
}

func (h *Handler) ListSpecialties(c *gin.Context) {
	specialties, err := h.service.Specialties(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, availabilityError(err))
		return
	}
	httputil.RespondWithSuccess(c, specialties)
}

// ListDoctors returns the specialty roster. With a date it is filtered
// to doctors with at least one bookable slot; without, the roster is
// returned unfiltered for the BY_DOCTOR strategy.
func (h *Handler) ListDoctors(c *gin.Context) {
	specialtyID, err := uuid.Parse(c.Query("specialty_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid specialty ID", err))
		return
	}

	if dateStr := c.Query("date"); dateStr != "" {
		date, err := model.ParseDate(dateStr)
		if err != nil {
			httputil.RespondWithError(c, apperrors.NewValidation("invalid date format", err))
			return
		}
		doctors, err := h.service.DoctorsAvailableOn(c.Request.Context(), specialtyID, date)
		if err != nil {
			httputil.RespondWithError(c, availabilityError(err))
			return
		}
		httputil.RespondWithSuccess(c, doctors)
		return
	}

	doctors, err := h.service.DoctorsInSpecialty(c.Request.Context(), specialtyID)
	if err != nil {
		httputil.RespondWithError(c, availabilityError(err))
		return
	}
	httputil.RespondWithSuccess(c, doctors)
}

func (h *Handler) ListWorkingDays(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid doctor ID", err))
		return
	}
	month, err := model.ParseDate(c.Query("month") + "-01")
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid month, expected YYYY-MM", err))
		return
	}

	days, err := h.service.DatesAvailableFor(c.Request.Context(), doctorID, month)
	if err != nil {
		httputil.RespondWithError(c, availabilityError(err))
		return
	}
	httputil.RespondWithSuccess(c, days)
}

func (h *Handler) ListServices(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid doctor ID", err))
		return
	}
	date, err := model.ParseDate(c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid date format", err))
		return
	}

	services, err := h.service.ServicesFor(c.Request.Context(), doctorID, date)
	if err != nil {
		httputil.RespondWithError(c, availabilityError(err))
		return
	}
	httputil.RespondWithSuccess(c, services)
}

func (h *Handler) ListSlots(c *gin.Context) {
	doctorID, err := uuid.Parse(c.Query("doctor_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid doctor ID", err))
		return
	}
	serviceID, err := uuid.Parse(c.Query("service_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid service ID", err))
		return
	}
	date, err := model.ParseDate(c.Query("date"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid date format", err))
		return
	}

	// Optional step between slot starts, in minutes. Defaults to the
	// service duration and is capped to keep the result set bounded.
	var granularity time.Duration
	if raw := c.Query("granularity"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			httputil.RespondWithError(c, apperrors.NewValidation("granularity must be a positive number of minutes", err))
			return
		}
		granularity = time.Duration(minutes) * time.Minute
		if granularity > h.maxGranularity {
			granularity = h.maxGranularity
		}
	}

	slots, err := h.service.SlotsForStep(c.Request.Context(), doctorID, serviceID, date, granularity)
	if err != nil {
		httputil.RespondWithError(c, availabilityError(err))
		return
	}
	httputil.RespondWithSuccess(c, slots)
}

// availabilityError keeps "availability unknown" distinct from a plain
// failure so clients never mistake missing data for a full calendar.
func availabilityError(err error) error {
	if availability.IsUnknown(err) {
		return apperrors.NewUnavailable("availability unknown", err)
	}
	return err
}
