package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rajat7300609030-maker/education-hills-api/internal/service"
	appErrors "github.com/rajat7300609030-maker/education-hills-api/pkg/errors"
	"github.com/rajat7300609030-maker/education-hills-api/pkg/response"
)

// PaymentHandler exposes the payment register endpoints.
type PaymentHandler struct {
	payments *service.PaymentService
	sessions *service.SessionService
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(payments *service.PaymentService, sessions *service.SessionService) *PaymentHandler {
	return &PaymentHandler{payments: payments, sessions: sessions}
}

func (h *PaymentHandler) listRequest(c *gin.Context) (service.PaymentListRequest, error) {
	session, err := resolveSession(c, h.sessions)
	if err != nil {
		return service.PaymentListRequest{}, err
	}
	return service.PaymentListRequest{
		Session:   session,
		StudentID: c.Query("studentId"),
		From:      c.Query("from"),
		To:        c.Query("to"),
		Search:    strings.TrimSpace(c.Query("search")),
	}, nil
}

// List godoc
// @Summary List payments in a session
// @Tags Payments
// @Produce json
// @Param session query string false "Session label, defaults to current"
// @Param studentId query string false "Filter by student"
// @Param from query string false "Start date YYYY-MM-DD, inclusive"
// @Param to query string false "End date YYYY-MM-DD, inclusive"
// @Param search query string false "Search by student name, student id or receipt no"
// @Success 200 {object} response.Envelope
// @Router /payments [get]
func (h *PaymentHandler) List(c *gin.Context) {
	req, err := h.listRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payments, err := h.payments.List(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// Stats godoc
// @Summary Collection stats for the filtered register
// @Tags Payments
// @Produce json
// @Param session query string false "Session label, defaults to current"
// @Success 200 {object} response.Envelope
// @Router /payments/stats [get]
func (h *PaymentHandler) Stats(c *gin.Context) {
	req, err := h.listRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	stats, err := h.payments.Stats(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Get godoc
// @Summary Get payment detail
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id} [get]
func (h *PaymentHandler) Get(c *gin.Context) {
	payment, err := h.payments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Create godoc
// @Summary Record a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param payload body service.CreatePaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Router /payments [post]
func (h *PaymentHandler) Create(c *gin.Context) {
	var req service.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.payments.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// Update godoc
// @Summary Edit a payment
// @Tags Payments
// @Accept json
// @Produce json
// @Param id path string true "Payment ID"
// @Param payload body service.UpdatePaymentRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Router /payments/{id} [put]
func (h *PaymentHandler) Update(c *gin.Context) {
	var req service.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.payments.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payment, nil)
}

// Delete godoc
// @Summary Move a payment to the trash
// @Tags Payments
// @Produce json
// @Param id path string true "Payment ID"
// @Success 200 {object} response.Envelope
// @Router /payments/{id} [delete]
func (h *PaymentHandler) Delete(c *gin.Context) {
	item, err := h.payments.SoftDelete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
