package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edudesk/edudesk-api/internal/models"
	"github.com/edudesk/edudesk-api/internal/service"
	appErrors "github.com/edudesk/edudesk-api/pkg/errors"
	"github.com/edudesk/edudesk-api/pkg/response"
)

// IssueHandler exposes issue reporting endpoints.
type IssueHandler struct {
	issues *service.IssueService
	scopes *service.ScopeService
}

// NewIssueHandler constructs IssueHandler.
func NewIssueHandler(issues *service.IssueService, scopes *service.ScopeService) *IssueHandler {
	return &IssueHandler{issues: issues, scopes: scopes}
}

// List godoc
// @Summary List issues
// @Tags Issues
// @Produce json
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /issues [get]
func (h *IssueHandler) List(c *gin.Context) {
	scope, ok := resolveScope(c, h.scopes)
	if !ok {
		return
	}
	var filter models.IssueFilter
	if value := stringQuery(c, "status"); value != nil {
		status := models.IssueStatus(*value)
		filter.Status = &status
	}
	filter.Page, filter.PageSize = pageParams(c)

	issues, pagination, err := h.issues.List(c.Request.Context(), scope, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issues, pagination)
}

// Report godoc
// @Summary Report an issue
// @Tags Issues
// @Accept json
// @Produce json
// @Param payload body service.ReportIssueRequest true "Issue payload"
// @Success 201 {object} response.Envelope
// @Router /issues [post]
func (h *IssueHandler) Report(c *gin.Context) {
	scope, ok := resolveScope(c, h.scopes)
	if !ok {
		return
	}
	var req service.ReportIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	issue, err := h.issues.Report(c.Request.Context(), scope, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, issue)
}

// UpdateStatus godoc
// @Summary Advance an issue's workflow status
// @Tags Issues
// @Accept json
// @Produce json
// @Param id path string true "Issue ID"
// @Param payload body service.UpdateIssueStatusRequest true "Status payload"
// @Success 200 {object} response.Envelope
// @Router /issues/{id}/status [put]
func (h *IssueHandler) UpdateStatus(c *gin.Context) {
	var req service.UpdateIssueStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	issue, err := h.issues.UpdateStatus(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issue, nil)
}
