package bookingflow

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
	"github.com/kientrank3/revita-scheduling-api/internal/service/availability"
	"github.com/kientrank3/revita-scheduling-api/internal/service/booking"
	apperrors "github.com/kientrank3/revita-scheduling-api/pkg/errors"
	"github.com/kientrank3/revita-scheduling-api/pkg/httputil"
	"github.com/kientrank3/revita-scheduling-api/pkg/metrics"
)

// Handler exposes the booking wizard over HTTP. Each flow is a
// server-side session the client advances step by step; candidate
// lists for the current step ride along on every state response.
type Handler struct {
	flows        *booking.FlowStore
	booking      *booking.Service
	availability *availability.Service
	metrics      *metrics.Metrics
}

func NewHandler(flows *booking.FlowStore, bookingSvc *booking.Service, availabilitySvc *availability.Service, m *metrics.Metrics) *Handler {
	return &Handler{
		flows:        flows,
		booking:      bookingSvc,
		availability: availabilitySvc,
		metrics:      m,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	flows := r.Group("/booking-flows")
	{
		flows.POST("", h.StartFlow)
		flows.GET("/:id", h.GetFlow)
		flows.PUT("/:id/selection", h.UpdateSelection)
		flows.POST("/:id/next", h.Next)
		flows.POST("/:id/prev", h.Prev)
		flows.POST("/:id/confirm", h.Confirm)
		flows.DELETE("/:id", h.AbandonFlow)
	}
}

type startFlowRequest struct {
	Strategy booking.Strategy `json:"strategy" binding:"required"`
}

type selectionRequest struct {
	// Strategy switches the wizard ordering and restarts the flow.
	Strategy    booking.Strategy `json:"strategy,omitempty"`
	SpecialtyID *uuid.UUID       `json:"specialty_id,omitempty"`
	DoctorID    *uuid.UUID       `json:"doctor_id,omitempty"`
	Date        *string          `json:"date,omitempty"`
	ServiceID   *uuid.UUID       `json:"service_id,omitempty"`
	Slot        *model.TimeSlot  `json:"slot,omitempty"`
}

type confirmRequest struct {
	PatientProfileID uuid.UUID `json:"patient_profile_id" binding:"required"`
}

// flowState is the response body for every flow endpoint: the snapshot
// plus whatever candidate list the current step needs.
type flowState struct {
	booking.Snapshot
	Candidates interface{} `json:"candidates,omitempty"`
}

func (h *Handler) StartFlow(c *gin.Context) {
	var req startFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error(), err))
		return
	}

	flow, err := booking.NewFlow(req.Strategy)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.flows.Put(flow)
	h.metrics.BookingFlowsStarted.Inc()

	httputil.RespondWithCreated(c, h.state(c, flow))
}

func (h *Handler) GetFlow(c *gin.Context) {
	flow, ok := h.lookup(c)
	if !ok {
		return
	}
	httputil.RespondWithSuccess(c, h.state(c, flow))
}

func (h *Handler) UpdateSelection(c *gin.Context) {
	flow, ok := h.lookup(c)
	if !ok {
		return
	}

	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error(), err))
		return
	}

	if err := h.applySelection(flow, req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, h.state(c, flow))
}

func (h *Handler) applySelection(flow *booking.Flow, req selectionRequest) error {
	if req.Strategy != "" {
		if err := flow.SetStrategy(req.Strategy); err != nil {
			return err
		}
		h.metrics.BookingFlowsReset.Inc()
		return nil
	}

	switch {
	case req.SpecialtyID != nil:
		return flow.SelectSpecialty(*req.SpecialtyID)
	case req.DoctorID != nil:
		return flow.SelectDoctor(*req.DoctorID)
	case req.Date != nil:
		date, err := model.ParseDate(*req.Date)
		if err != nil {
			return apperrors.NewValidation("invalid date format", err)
		}
		return flow.SelectDate(date)
	case req.ServiceID != nil:
		return flow.SelectService(*req.ServiceID)
	case req.Slot != nil:
		return flow.SelectSlot(*req.Slot)
	default:
		return apperrors.NewValidation("selection request carries no value", nil)
	}
}

func (h *Handler) Next(c *gin.Context) {
	flow, ok := h.lookup(c)
	if !ok {
		return
	}
	if err := flow.Next(); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, h.state(c, flow))
}

func (h *Handler) Prev(c *gin.Context) {
	flow, ok := h.lookup(c)
	if !ok {
		return
	}
	flow.Prev()
	httputil.RespondWithSuccess(c, h.state(c, flow))
}

func (h *Handler) Confirm(c *gin.Context) {
	flow, ok := h.lookup(c)
	if !ok {
		return
	}

	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error(), err))
		return
	}

	appointment, err := h.booking.ConfirmFlow(c.Request.Context(), flow, req.PatientProfileID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	h.flows.Delete(flow.ID())
	httputil.RespondWithCreated(c, appointment)
}

func (h *Handler) AbandonFlow(c *gin.Context) {
	flow, ok := h.lookup(c)
	if !ok {
		return
	}
	h.flows.Delete(flow.ID())
	h.metrics.BookingFlowsReset.Inc()
	httputil.RespondWithSuccess(c, gin.H{"id": flow.ID()})
}

func (h *Handler) lookup(c *gin.Context) (*booking.Flow, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid flow ID", err))
		return nil, false
	}
	flow, err := h.flows.Get(id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return nil, false
	}
	return flow, true
}

// state captures the flow snapshot and attaches candidates for the
// current step. The revision read before the fetch guards against a
// concurrent request moving the flow while availability is in flight:
// a stale list is dropped rather than shown against the wrong state.
func (h *Handler) state(c *gin.Context, flow *booking.Flow) flowState {
	snapshot := flow.Snapshot()
	state := flowState{Snapshot: snapshot}

	if cached, ok := flow.Candidates(snapshot.StepKind); ok {
		state.Candidates = cached
		return state
	}

	revision := snapshot.Revision
	data, err := h.fetchCandidates(c, snapshot)
	if err != nil {
		// Candidate fetch failures degrade the step, not the flow.
		log.Warn().Err(err).
			Str("flow_id", snapshot.ID.String()).
			Str("step", string(snapshot.StepKind)).
			Msg("candidate fetch failed")
		return state
	}
	if data == nil {
		return state
	}
	if !flow.PutCandidates(revision, snapshot.StepKind, data) {
		h.metrics.StaleResponsesDropped.Inc()
		log.Debug().
			Str("flow_id", snapshot.ID.String()).
			Str("step", string(snapshot.StepKind)).
			Uint64("revision", revision).
			Msg("stale candidate list dropped")
		return state
	}
	state.Candidates = data
	return state
}

// fetchCandidates resolves the candidate list for the step the flow is
// on. Steps whose upstream selections are not yet made return nothing,
// as does the date step under the by-date ordering where any date is
// choosable.
func (h *Handler) fetchCandidates(c *gin.Context, s booking.Snapshot) (interface{}, error) {
	ctx := c.Request.Context()
	sel := s.Selections

	switch s.StepKind {
	case booking.StepChooseSpecialty:
		return h.availability.Specialties(ctx)

	case booking.StepChooseDoctor:
		if sel.SpecialtyID == nil {
			return nil, nil
		}
		if sel.Date != nil {
			return h.availability.DoctorsAvailableOn(ctx, *sel.SpecialtyID, *sel.Date)
		}
		return h.availability.DoctorsInSpecialty(ctx, *sel.SpecialtyID)

	case booking.StepChooseDate:
		if sel.DoctorID == nil {
			return nil, nil
		}
		return h.availability.DatesAvailableFor(ctx, *sel.DoctorID, time.Now())

	case booking.StepChooseService:
		if sel.DoctorID == nil || sel.Date == nil {
			return nil, nil
		}
		return h.availability.ServicesFor(ctx, *sel.DoctorID, *sel.Date)

	case booking.StepChooseSlot:
		if sel.DoctorID == nil || sel.ServiceID == nil || sel.Date == nil {
			return nil, nil
		}
		return h.availability.SlotsFor(ctx, *sel.DoctorID, *sel.ServiceID, *sel.Date)
	}
	return nil, nil
}
