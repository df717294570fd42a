package server

import (
	"time"

	"stallbook/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLoggingMiddleware logs every HTTP request with latency and caller.
func RequestLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Infof("%s %s %d %dms ip=%s request_id=%s",
			c.Request.Method, path, status, latency.Milliseconds(),
			c.ClientIP(), RequestID(c),
		)
	}
}
