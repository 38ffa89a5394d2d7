package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/nmby204/SGE/internal/authz"
	"github.com/nmby204/SGE/internal/models"
	appErrors "github.com/nmby204/SGE/pkg/errors"
	"github.com/nmby204/SGE/pkg/response"
)

// Authorize rejects requests whose role can never perform the operation. The
// allow-list comes from the authz policy table so routes and services share
// one source of truth; per-row ownership is still decided in the services.
func Authorize(op authz.Operation) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{})
	for _, role := range authz.AllowedRoles(op) {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthenticated)
			c.Abort()
			return
		}
		claims, ok := claimsValue.(*models.JWTClaims)
		if !ok {
			response.Error(c, appErrors.ErrUnauthenticated)
			c.Abort()
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
