package middleware

import (
	"CourseHub/pkg/logger"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

func LoggingMiddleware(log logger.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.Request.URL.Path
		if rawQuery := c.Request.URL.RawQuery; rawQuery != "" {
			path = fmt.Sprintf("%s?%s", path, rawQuery)
		}
		status := c.Writer.Status()

		args := []any{
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}
		if id, ok := ClientID(c); ok {
			args = append(args, "user_id", id)
		}
		log.Info(fmt.Sprintf("%s %s", c.Request.Method, path), args...)

		for _, ginErr := range c.Errors {
			log.ErrorErr("HTTP request error", ginErr.Err,
				"status", status,
				"method", c.Request.Method,
				"path", path,
			)
		}
	}
}
