package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"movies-backend/internal/metrics"
)

// Metrics records request latency by route template, so /api/movies/:id is one series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
