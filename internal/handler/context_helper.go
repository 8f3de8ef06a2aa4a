package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aishe-survey-api/internal/middleware"
	"github.com/noah-isme/aishe-survey-api/internal/models"
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

// resolveDepartment picks the effective department for a request:
// explicit parameter when given, the caller's own department otherwise.
// Returns false when the caller may not act on the resolved department.
func resolveDepartment(c *gin.Context, requested string) (string, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		return "", false
	}
	if requested == "" {
		if claims.Role == models.RoleDepartment {
			return claims.DepartmentID, true
		}
		return "", true
	}
	return requested, claims.CanAccessDepartment(requested)
}
