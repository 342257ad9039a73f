package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/edudesk/edudesk-api/internal/middleware"
	"github.com/edudesk/edudesk-api/internal/models"
	"github.com/edudesk/edudesk-api/internal/service"
	appErrors "github.com/edudesk/edudesk-api/pkg/errors"
	"github.com/edudesk/edudesk-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// resolveScope turns the request claims into a visibility scope. It
// writes the error response itself; callers return on !ok.
func resolveScope(c *gin.Context, scopes *service.ScopeService) (models.Scope, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return models.Scope{}, false
	}
	scope, err := scopes.Resolve(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return models.Scope{}, false
	}
	return scope, true
}
