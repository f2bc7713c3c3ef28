package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ClientIDCtx    = "client_id"
	ClientRolesCtx = "client_roles"
)

// ClientID returns the authenticated user id set by AuthMiddleware.
func ClientID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get(ClientIDCtx)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := raw.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
