package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/kotoba-labs/kotoba-api/internal/models"
	appErrors "github.com/kotoba-labs/kotoba-api/pkg/errors"
	"github.com/kotoba-labs/kotoba-api/pkg/response"
)

// AllowSelf is the RBAC pseudo-role that passes when the route's :id
// parameter matches the caller's own user id.
const AllowSelf = "SELF"

// RBAC enforces role-based access control. It must run after JWT.
func RBAC(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsValue, exists := c.Get(ContextUserKey)
		if !exists {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		claims := claimsValue.(*models.JWTClaims)

		allowSelf := false
		for _, a := range allowed {
			if a == AllowSelf {
				allowSelf = true
				continue
			}
			if claims.Role == models.UserRole(a) {
				c.Next()
				return
			}
		}

		if allowSelf {
			if targetID := c.Param("id"); targetID != "" && targetID == claims.UserID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles builds an RBAC check from typed roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, r := range roles {
		allowed[i] = string(r)
	}
	return RBAC(allowed...)
}
