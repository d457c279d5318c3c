package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/infrastructure/metrics"
)

// unmatchedRoute labels requests no route matched, so 404 probes do not
// create one series per path
const unmatchedRoute = "unmatched"

// HTTPMetrics returns a Gin middleware that records request count, latency
// and in-flight requests by method and route pattern. A nil m disables it.
func HTTPMetrics(m *metrics.Metrics) gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		m.RequestStarted()

		c.Next()

		m.ObserveRequest(c.Request.Method, routePattern(c), c.Writer.Status(), time.Since(start).Seconds())
	}
}

// routePattern returns the matched route (e.g. "/api/v1/carts/:id") instead
// of the raw path
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return unmatchedRoute
}
