package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edudesk/edudesk-api/internal/service"
	"github.com/edudesk/edudesk-api/pkg/response"
)

// DashboardHandler exposes the role dashboard endpoint.
type DashboardHandler struct {
	dashboard *service.DashboardService
	scopes    *service.ScopeService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService, scopes *service.ScopeService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, scopes: scopes}
}

// Get godoc
// @Summary Role-shaped dashboard for the signed-in user
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard [get]
func (h *DashboardHandler) Get(c *gin.Context) {
	scope, ok := resolveScope(c, h.scopes)
	if !ok {
		return
	}
	data, err := h.dashboard.Build(c.Request.Context(), scope)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}
