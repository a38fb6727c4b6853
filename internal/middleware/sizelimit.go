package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/patient-registry/pkg/httputil"
)

// SizeLimit rejects bodies larger than maxBytes. A declared Content-Length
// over the limit is refused up front; otherwise the body reader stops at the
// limit and the handler sees an *http.MaxBytesError.
func SizeLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			httputil.AbortWithError(c, http.StatusRequestEntityTooLarge, "request body too large",
				fmt.Sprintf("body size exceeds %d bytes", maxBytes))
			return
		}

		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}
