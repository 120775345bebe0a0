package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
)

// HTTPObserver records request counts and latency.
type HTTPObserver interface {
	ObserveHTTPRequest(method, route string, status int, elapsed time.Duration)
}

// Metrics labels requests by their route template so ids do not explode
// label cardinality. Unmatched routes are reported as "unmatched".
func Metrics(observer HTTPObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		observer.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
