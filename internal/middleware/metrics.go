package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"signalbox/services"
)

/**
 * HTTP request statistics middleware
 * @description
 * - Counts requests per route and status code
 * - Records handling time
 * - Feeds the totals reported by /healthz
 */
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unknown"
		}
		status := c.Writer.Status()
		services.RecordRequest(path, strconv.Itoa(status), time.Since(start).Seconds(), status >= 400)
	}
}
