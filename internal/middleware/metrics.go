package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/aishe-survey-api/internal/service"
)

// Metrics records method, route, status and latency for every request.
// A nil service disables instrumentation.
func Metrics(metrics *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics == nil {
			c.Next()
			return
		}
		start := time.Now()
		defer func() {
			route := c.FullPath()
			if route == "" {
				// unmatched routes share one label to keep cardinality bounded
				route = "unmatched"
			}
			metrics.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
		}()
		c.Next()
	}
}
