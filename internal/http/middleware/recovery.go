// README: Recovery middleware: turns a handler panic into a logged 500.
package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"propertyapi/internal/logger"
)

func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Errorw("panic recovered",
					"panic", r,
					"path", c.Request.URL.Path,
					"request_id", GetRequestID(c),
					"stack", string(debug.Stack()),
				)
				c.Header("Content-Type", "application/problem+json")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"type":    "about:blank",
					"title":   http.StatusText(http.StatusInternalServerError),
					"status":  http.StatusInternalServerError,
					"path":    c.Request.URL.Path,
					"message": "error.http.500",
				})
			}
		}()
		c.Next()
	}
}
