package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type StatusHandler struct {
	now func() time.Time
}

func NewStatusHandler() *StatusHandler {
	return &StatusHandler{now: time.Now}
}

func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Course Subscription API is running!",
		"timestamp": h.now().UTC().Format(time.RFC3339Nano),
	})
}

func (h *StatusHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Welcome to Course Subscription API",
		"endpoints": gin.H{
			"auth":          "/api/auth",
			"courses":       "/api/courses",
			"subscriptions": "/api/subscribe",
			"health":        "/api/health",
		},
	})
}

func (h *StatusHandler) NotFound(c *gin.Context) {
	Fail(c, http.StatusNotFound, "Route not found")
}
