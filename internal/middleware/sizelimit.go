package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clinrec/console/pkg/httputil"
)

// SizeLimit rejects oversized bodies before they are read. The limit
// must leave room for multipart framing above the bare file limit, so
// upload routes pass the file cap plus some slack.
func SizeLimit(maxBodySize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBodySize {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, httputil.Response{
				Success: false,
				Error:   "request body too large",
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodySize)
		c.Next()
	}
}
