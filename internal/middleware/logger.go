package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/clinrec/console/pkg/logger"
)

// Logger logs one line per request with latency and status. Bodies are
// never logged; uploads are large and patient data is sensitive.
func Logger(log *logger.Logger) gin.HandlerFunc {
	zl := log.WithComponent("http").Zerolog()
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		status := c.Writer.Status()
		event := zl.Info()
		switch {
		case status >= 500:
			event = zl.Error()
		case status >= 400:
			event = zl.Warn()
		}
		event.
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("request processed")
	}
}
