package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ErlanBelekov/expense-tracker/internal/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records latency and count per route template and status class.
// CORS preflights are answered before routing and are not recorded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		class := strconv.Itoa(c.Writer.Status()/100) + "xx"

		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route, class).Observe(time.Since(start).Seconds())
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, class).Inc()
	}
}
