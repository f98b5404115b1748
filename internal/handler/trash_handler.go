package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajat7300609030-maker/education-hills-api/internal/models"
	"github.com/rajat7300609030-maker/education-hills-api/internal/service"
	"github.com/rajat7300609030-maker/education-hills-api/pkg/response"
)

// TrashHandler exposes the recycle bin endpoints.
type TrashHandler struct {
	trash *service.TrashService
}

// NewTrashHandler constructs TrashHandler.
func NewTrashHandler(trash *service.TrashService) *TrashHandler {
	return &TrashHandler{trash: trash}
}

// List godoc
// @Summary List trashed records
// @Tags Trash
// @Produce json
// @Param type query string false "Filter by type: STUDENT, PAYMENT or EXPENSE"
// @Success 200 {object} response.Envelope
// @Router /trash [get]
func (h *TrashHandler) List(c *gin.Context) {
	items, err := h.trash.List(c.Request.Context(), models.TrashType(c.Query("type")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get trash item detail
// @Tags Trash
// @Produce json
// @Param id path string true "Trash item ID"
// @Success 200 {object} response.Envelope
// @Router /trash/{id} [get]
func (h *TrashHandler) Get(c *gin.Context) {
	item, err := h.trash.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Restore godoc
// @Summary Restore a trashed record to its origin collection
// @Tags Trash
// @Produce json
// @Param id path string true "Trash item ID"
// @Success 204
// @Router /trash/{id}/restore [post]
func (h *TrashHandler) Restore(c *gin.Context) {
	if err := h.trash.Restore(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Delete godoc
// @Summary Permanently delete a trashed record
// @Tags Trash
// @Produce json
// @Param id path string true "Trash item ID"
// @Success 204
// @Router /trash/{id} [delete]
func (h *TrashHandler) Delete(c *gin.Context) {
	if err := h.trash.PermanentDelete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
