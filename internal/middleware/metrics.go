package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/okulapps/etut-api/internal/service"
)

// Metrics records per-request duration and status. The route template
// (/sessions/:id) is the label, not the raw URL, to keep cardinality bounded;
// unmatched routes fall back to the raw path.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
