package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agora/server/internal/utils/metrics"
)

// Metrics returns a middleware that records HTTP metrics. Requests whose
// handler called SetListing are also counted as first-page or continuation
// list requests for their route.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		route := c.FullPath() // route pattern keeps label cardinality bounded
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method

		m.HTTPRequestsInFlight.Inc()
		defer m.HTTPRequestsInFlight.Dec()

		c.Next()

		status := c.Writer.Status()
		m.RecordHTTPRequest(method, route, status, time.Since(start))

		if _, ok := GetListing(c); ok && status < 400 {
			m.RecordListRequest(route, isContinuation(c.Request.URL.Query()))
		}
	}
}
