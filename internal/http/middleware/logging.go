// README: Access log middleware: one structured line per request with its latency.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"propertyapi/internal/logger"
)

func Logging(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", float64(time.Since(start).Microseconds()) / 1000,
			"request_id", GetRequestID(c),
			"client_ip", c.ClientIP(),
		}
		if uid := CallerUID(c); uid != "" {
			fields = append(fields, "uid", uid)
		}
		if len(c.Errors) > 0 {
			log.Errorw(c.Errors.String(), fields...)
			return
		}
		log.Infow("http request", fields...)
	}
}
