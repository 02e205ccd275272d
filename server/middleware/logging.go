package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/forgekit/forgekit/logger"
)

// RequestLogger logs one line per completed request.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := map[string]interface{}{
			"method":              c.Request.Method,
			logger.FieldPath:      c.Request.URL.Path,
			"status":              c.Writer.Status(),
			logger.FieldDuration:  time.Since(start).Milliseconds(),
			logger.FieldRequestID: c.GetString("request_id"),
		}
		if c.Writer.Status() >= 500 {
			logger.Error("request failed", fields)
		} else {
			logger.Info("request", fields)
		}
	}
}
