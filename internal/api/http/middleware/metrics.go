package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loan-guidance/loan-guidance-backend/internal/observability"
)

// Metrics records request counts and latency per matched route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		observability.HTTPRequests.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
		observability.HTTPDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
	}
}
