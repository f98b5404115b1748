package handler

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rajat7300609030-maker/education-hills-api/internal/service"
	"github.com/rajat7300609030-maker/education-hills-api/pkg/response"
)

// ExportHandler exposes the payment register download endpoints.
type ExportHandler struct {
	exports  *service.ExportService
	sessions *service.SessionService
}

// NewExportHandler constructs ExportHandler.
func NewExportHandler(exports *service.ExportService, sessions *service.SessionService) *ExportHandler {
	return &ExportHandler{exports: exports, sessions: sessions}
}

// PaymentRegister godoc
// @Summary Download the filtered payment register
// @Tags Exports
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf, default csv"
// @Param session query string false "Session label, defaults to current"
// @Param studentId query string false "Filter by student"
// @Param from query string false "Start date YYYY-MM-DD, inclusive"
// @Param to query string false "End date YYYY-MM-DD, inclusive"
// @Success 200 {file} binary
// @Router /exports/payments [get]
func (h *ExportHandler) PaymentRegister(c *gin.Context) {
	session, err := resolveSession(c, h.sessions)
	if err != nil {
		response.Error(c, err)
		return
	}
	req := service.PaymentListRequest{
		Session:   session,
		StudentID: c.Query("studentId"),
		From:      c.Query("from"),
		To:        c.Query("to"),
		Search:    strings.TrimSpace(c.Query("search")),
	}
	format := c.DefaultQuery("format", service.ExportFormatCSV)

	file, err := h.exports.PaymentRegister(c.Request.Context(), req, format)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(200, file.ContentType, file.Content)
}
