package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajat7300609030-maker/education-hills-api/internal/service"
	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
	"github.com/rajat7300609030-maker/education-hills-api/pkg/response"
)

// FeeStructureHandler exposes fee structure endpoints.
type FeeStructureHandler struct {
	fees     *service.FeeStructureService
	sessions *service.SessionService
}

// NewFeeStructureHandler constructs FeeStructureHandler.
func NewFeeStructureHandler(fees *service.FeeStructureService, sessions *service.SessionService) *FeeStructureHandler {
	return &FeeStructureHandler{fees: fees, sessions: sessions}
}

// List godoc
// @Summary List fee structures in a session
// @Tags FeeStructures
// @Produce json
// @Param session query string false "Session label, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /fee-structures [get]
func (h *FeeStructureHandler) List(c *gin.Context) {
	session, err := resolveSession(c, h.sessions)
	if err != nil {
		response.Error(c, err)
		return
	}
	fees, err := h.fees.List(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, nil)
}

// Get godoc
// @Summary Get fee structure detail
// @Tags FeeStructures
// @Produce json
// @Param id path string true "Fee structure ID"
// @Success 200 {object} response.Envelope
// @Router /fee-structures/{id} [get]
func (h *FeeStructureHandler) Get(c *gin.Context) {
	fee, err := h.fees.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Create godoc
// @Summary Define a fee structure
// @Tags FeeStructures
// @Accept json
// @Produce json
// @Param payload body service.CreateFeeStructureRequest true "Fee structure payload"
// @Success 201 {object} response.Envelope
// @Router /fee-structures [post]
func (h *FeeStructureHandler) Create(c *gin.Context) {
	var req service.CreateFeeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fee, err := h.fees.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fee)
}

// Update godoc
// @Summary Edit a fee structure
// @Tags FeeStructures
// @Accept json
// @Produce json
// @Param id path string true "Fee structure ID"
// @Param payload body service.UpdateFeeStructureRequest true "Fee structure payload"
// @Success 200 {object} response.Envelope
// @Router /fee-structures/{id} [put]
func (h *FeeStructureHandler) Update(c *gin.Context) {
	var req service.UpdateFeeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fee, err := h.fees.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Delete godoc
// @Summary Delete a fee structure
// @Tags FeeStructures
// @Produce json
// @Param id path string true "Fee structure ID"
// @Success 204
// @Router /fee-structures/{id} [delete]
func (h *FeeStructureHandler) Delete(c *gin.Context) {
	if err := h.fees.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
