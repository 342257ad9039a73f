package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edudesk/edudesk-api/internal/models"
	"github.com/edudesk/edudesk-api/internal/service"
	"github.com/edudesk/edudesk-api/pkg/response"
)

// ReportHandler exposes attendance report endpoints.
type ReportHandler struct {
	reports *service.ReportService
	scopes  *service.ScopeService
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *service.ReportService, scopes *service.ScopeService) *ReportHandler {
	return &ReportHandler{reports: reports, scopes: scopes}
}

// Attendance godoc
// @Summary Per-class attendance breakdown for a window
// @Tags Reports
// @Produce json
// @Param window query string false "Window: 7d, 30d or month (default 7d)"
// @Success 200 {object} response.Envelope
// @Router /reports/attendance [get]
func (h *ReportHandler) Attendance(c *gin.Context) {
	scope, ok := resolveScope(c, h.scopes)
	if !ok {
		return
	}
	window := models.ReportWindow(c.DefaultQuery("window", string(models.ReportWindowWeek)))
	report, err := h.reports.Attendance(c.Request.Context(), scope, window)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Export godoc
// @Summary Download the attendance report as CSV or PDF
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param window query string false "Window: 7d, 30d or month (default 7d)"
// @Param format query string false "Format: csv or pdf (default csv)"
// @Success 200 {file} file
// @Router /reports/attendance/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	scope, ok := resolveScope(c, h.scopes)
	if !ok {
		return
	}
	window := models.ReportWindow(c.DefaultQuery("window", string(models.ReportWindowWeek)))
	format := service.ReportFormat(c.DefaultQuery("format", string(service.ReportFormatCSV)))

	result, err := h.reports.ExportAttendance(c.Request.Context(), scope, window, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Content)
}
