package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajat7300609030-maker/education-hills-api/internal/service"
	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
	"github.com/rajat7300609030-maker/education-hills-api/pkg/response"
)

// SessionHandler exposes school profile and session management endpoints.
type SessionHandler struct {
	sessions *service.SessionService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(sessions *service.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

type sessionLabelRequest struct {
	Label string `json:"label" binding:"required"`
}

type renameSessionRequest struct {
	NewLabel string `json:"new_label" binding:"required"`
}

// Profile godoc
// @Summary Get the school profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profile [get]
func (h *SessionHandler) Profile(c *gin.Context) {
	profile, err := h.sessions.Profile(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// UpdateProfile godoc
// @Summary Update the school profile identity fields
// @Tags Profile
// @Accept json
// @Produce json
// @Param payload body service.UpdateProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Router /profile [put]
func (h *SessionHandler) UpdateProfile(c *gin.Context) {
	var req service.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	profile, err := h.sessions.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// List godoc
// @Summary List sessions and the current pointer
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	sessions, current, err := h.sessions.Sessions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"sessions": sessions, "current_session": current}, nil)
}

// Next godoc
// @Summary Suggest the next session label
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions/next [get]
func (h *SessionHandler) Next(c *gin.Context) {
	label, err := h.sessions.NextSessionLabel(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"label": label}, nil)
}

// Add godoc
// @Summary Register a new session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body sessionLabelRequest true "Session label"
// @Success 201 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Add(c *gin.Context) {
	var req sessionLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	profile, err := h.sessions.AddSession(c.Request.Context(), req.Label)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, profile)
}

// Rename godoc
// @Summary Rename a session everywhere
// @Tags Sessions
// @Accept json
// @Produce json
// @Param label path string true "Current session label"
// @Param payload body renameSessionRequest true "New label"
// @Success 200 {object} response.Envelope
// @Router /sessions/{label} [put]
func (h *SessionHandler) Rename(c *gin.Context) {
	var req renameSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	profile, err := h.sessions.RenameSession(c.Request.Context(), c.Param("label"), req.NewLabel)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// SetCurrent godoc
// @Summary Switch the current session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body sessionLabelRequest true "Session label"
// @Success 200 {object} response.Envelope
// @Router /sessions/current [put]
func (h *SessionHandler) SetCurrent(c *gin.Context) {
	var req sessionLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	profile, err := h.sessions.SetCurrentSession(c.Request.Context(), req.Label)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Delete godoc
// @Summary Delete an empty, non-current session
// @Tags Sessions
// @Produce json
// @Param label path string true "Session label"
// @Success 200 {object} response.Envelope
// @Router /sessions/{label} [delete]
func (h *SessionHandler) Delete(c *gin.Context) {
	profile, err := h.sessions.DeleteSession(c.Request.Context(), c.Param("label"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}
