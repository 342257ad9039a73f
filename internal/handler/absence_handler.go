package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edudesk/edudesk-api/internal/service"
	appErrors "github.com/edudesk/edudesk-api/pkg/errors"
	"github.com/edudesk/edudesk-api/pkg/response"
)

// AbsenceHandler exposes absence request endpoints.
type AbsenceHandler struct {
	absences *service.AbsenceService
	scopes   *service.ScopeService
}

// NewAbsenceHandler constructs AbsenceHandler.
func NewAbsenceHandler(absences *service.AbsenceService, scopes *service.ScopeService) *AbsenceHandler {
	return &AbsenceHandler{absences: absences, scopes: scopes}
}

// List godoc
// @Summary List absence requests
// @Tags Absences
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /absence-requests [get]
func (h *AbsenceHandler) List(c *gin.Context) {
	scope, ok := resolveScope(c, h.scopes)
	if !ok {
		return
	}
	var req service.AbsenceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	requests, pagination, err := h.absences.List(c.Request.Context(), scope, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, pagination)
}

// Get godoc
// @Summary Get an absence request
// @Tags Absences
// @Produce json
// @Param id path string true "Request ID"
// @Success 200 {object} response.Envelope
// @Router /absence-requests/{id} [get]
func (h *AbsenceHandler) Get(c *gin.Context) {
	scope, ok := resolveScope(c, h.scopes)
	if !ok {
		return
	}
	request, err := h.absences.Get(c.Request.Context(), scope, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}

// Submit godoc
// @Summary Submit an absence request for a child
// @Tags Absences
// @Accept json
// @Produce json
// @Param payload body service.SubmitAbsenceRequest true "Request payload"
// @Success 201 {object} response.Envelope
// @Router /absence-requests [post]
func (h *AbsenceHandler) Submit(c *gin.Context) {
	scope, ok := resolveScope(c, h.scopes)
	if !ok {
		return
	}
	var req service.SubmitAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.absences.Submit(c.Request.Context(), scope, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, request)
}

// Review godoc
// @Summary Approve or reject a pending absence request
// @Tags Absences
// @Accept json
// @Produce json
// @Param id path string true "Request ID"
// @Param payload body service.ReviewAbsenceRequest true "Decision payload"
// @Success 200 {object} response.Envelope
// @Router /absence-requests/{id}/review [put]
func (h *AbsenceHandler) Review(c *gin.Context) {
	scope, ok := resolveScope(c, h.scopes)
	if !ok {
		return
	}
	var req service.ReviewAbsenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	request, err := h.absences.Review(c.Request.Context(), scope, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, request, nil)
}
