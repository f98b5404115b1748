package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajat7300609030-maker/education-hills-api/internal/service"
	"github.com/rajat7300609030-maker/education-hills-api/pkg/response"
)

// DashboardHandler exposes the session overview endpoint.
type DashboardHandler struct {
	dashboard *service.DashboardService
	sessions  *service.SessionService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService, sessions *service.SessionService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, sessions: sessions}
}

// Stats godoc
// @Summary Session dashboard overview
// @Tags Dashboard
// @Produce json
// @Param session query string false "Session label, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	session, err := resolveSession(c, h.sessions)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, err := h.dashboard.Stats(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}
