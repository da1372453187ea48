package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"notebase/internal/metrics"
)

// Metrics records per-endpoint counters keyed by method plus route pattern,
// so /channels/42 and /channels/43 land in the same bucket.
func Metrics(registry *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		registry.RecordRequest(c.Request.Method+" "+endpoint, c.Writer.Status(), time.Since(start))
	}
}
