package worksession

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kientrank3/revita-scheduling-api/internal/model"
	"github.com/kientrank3/revita-scheduling-api/internal/service/roster"
	apperrors "github.com/kientrank3/revita-scheduling-api/pkg/errors"
	"github.com/kientrank3/revita-scheduling-api/pkg/httputil"
)

type Handler struct {
	service *roster.Service
}

func NewHandler(service *roster.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	sessions := r.Group("/work-sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("", h.ListSessions)
		sessions.GET("/:id", h.GetSession)
		sessions.PATCH("/:id", h.UpdateSession)
	}
}

// CreateSession registers a staff work session. Overlap with the
// staffer's other active sessions is rejected with the conflicting
// intervals in the error body.
func (h *Handler) CreateSession(c *gin.Context) {
	var req model.CreateWorkSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error(), err))
		return
	}

	session, err := h.service.CreateSession(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, session)
}

func (h *Handler) UpdateSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid work session ID", err))
		return
	}

	var req model.UpdateWorkSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation(err.Error(), err))
		return
	}

	session, err := h.service.UpdateSession(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, session)
}

func (h *Handler) GetSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid work session ID", err))
		return
	}

	session, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, session)
}

func (h *Handler) ListSessions(c *gin.Context) {
	staffID, err := uuid.Parse(c.Query("staff_id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("staff_id query parameter is required", err))
		return
	}

	from, err := model.ParseDate(c.Query("from"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("from query parameter must be a date", err))
		return
	}
	to, err := model.ParseDate(c.Query("to"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("to query parameter must be a date", err))
		return
	}

	sessions, err := h.service.ListSessions(c.Request.Context(), staffID, from, to)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, sessions)
}
