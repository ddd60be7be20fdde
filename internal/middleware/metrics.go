package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/hivcare-api/pkg/metrics"
)

// Metrics records request counts and latency labelled by route template, so
// IDs in paths do not explode cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		code := strconv.Itoa(status)
		method := c.Request.Method

		m.RequestTotal.WithLabelValues(method, path, code).Inc()
		m.RequestDuration.WithLabelValues(method, path, code).Observe(time.Since(start).Seconds())
		if status >= 400 {
			m.ErrorTotal.WithLabelValues(method, path, strconv.Itoa(status/100)+"xx").Inc()
		}
	}
}
