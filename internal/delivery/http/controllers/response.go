package controllers

import (
	"github.com/gin-gonic/gin"
)

// Fail writes the error envelope shared by every endpoint.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

// FailWith is Fail with extra top-level fields.
func FailWith(c *gin.Context, status int, message string, extra gin.H) {
	body := gin.H{"success": false, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}
