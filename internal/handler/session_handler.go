package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okulapps/etut-api/internal/models"
	"github.com/okulapps/etut-api/internal/service"
	appErrors "github.com/okulapps/etut-api/pkg/errors"
	"github.com/okulapps/etut-api/pkg/response"
)

// SessionHandler manages session endpoints.
type SessionHandler struct {
	service *service.SchedulingService
}

// NewSessionHandler constructs handler.
func NewSessionHandler(svc *service.SchedulingService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// List godoc
// @Summary List sessions
// @Tags Sessions
// @Produce json
// @Param teacherId query string false "Filter by teacher"
// @Param studentId query string false "Filter by student"
// @Param weekYear query string false "Filter by week key, e.g. 2024-W10"
// @Param status query string false "Filter by status (scheduled|completed|absent)"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	var filter models.SessionFilter
	filter.TeacherID = c.Query("teacherId")
	filter.StudentID = c.Query("studentId")
	filter.WeekYear = c.Query("weekYear")
	if raw := c.Query("status"); raw != "" {
		status := models.SessionStatus(raw)
		if !status.Valid() {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown status "+raw))
			return
		}
		filter.Status = &status
	}

	sessions, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// Get godoc
// @Summary Get session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	session, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Validate godoc
// @Summary Validate an assignment without committing it
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.ValidateSessionRequest true "Assignment proposal"
// @Success 200 {object} response.Envelope
// @Router /sessions/validate [post]
func (h *SessionHandler) Validate(c *gin.Context) {
	var req service.ValidateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	decision, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	// A rejection is a successful validation run; the decision is the payload.
	response.JSON(c, http.StatusOK, decision, nil)
}

// Create godoc
// @Summary Create session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.CreateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// Complete godoc
// @Summary Mark session as held
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/complete [post]
func (h *SessionHandler) Complete(c *gin.Context) {
	session, err := h.service.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// MarkAbsent godoc
// @Summary Mark session as missed and ban the student
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/absent [post]
func (h *SessionHandler) MarkAbsent(c *gin.Context) {
	session, err := h.service.MarkAbsent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// UpdateNotes godoc
// @Summary Update session notes
// @Tags Sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body service.UpdateNotesRequest true "Notes payload"
// @Success 200 {object} response.Envelope
// @Router /sessions/{id}/notes [put]
func (h *SessionHandler) UpdateNotes(c *gin.Context) {
	var req service.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.service.UpdateNotes(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// Delete godoc
// @Summary Delete session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 204
// @Router /sessions/{id} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
