package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func RequireRoles(allowedRoles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		roleSet[r] = struct{}{}
	}
	return func(c *gin.Context) {
		raw, exists := c.Get(ClientRolesCtx)
		if !exists {
			abort(c, http.StatusForbidden, "roles not found")
			return
		}

		roles, ok := raw.([]string)
		if !ok {
			abort(c, http.StatusInternalServerError, "invalid roles format")
			return
		}

		for _, role := range roles {
			if _, allowed := roleSet[role]; allowed {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "insufficient permissions")
	}
}
