package middleware

import (
	"strconv"
	"time"

	"clutchzone-api/internal/analytics"

	"github.com/gin-gonic/gin"
)

// Analytics records request counts and latencies for every route.
func Analytics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		analytics.HTTPRequests.WithLabelValues(c.Request.Method, path, status).Inc()
		analytics.HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
