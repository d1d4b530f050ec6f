package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/clinrec/console/pkg/httputil"
	"github.com/clinrec/console/pkg/logger"
)

// ErrorHandler converts errors attached to the gin context into the
// standard failure envelope. Handlers that already wrote a response
// are left alone.
func ErrorHandler(log *logger.Logger) gin.HandlerFunc {
	l := log.WithComponent("http")
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		last := c.Errors.Last()
		l.Error(last.Err, "request error",
			"request_id", c.GetString(ContextRequestID),
			"method", c.Request.Method,
			"path", c.Request.URL.Path)

		if c.Writer.Written() {
			return
		}
		httputil.RespondWithError(c, last.Err)
	}
}
