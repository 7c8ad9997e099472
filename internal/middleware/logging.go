package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"fundledger/internal/logger"
	"fundledger/internal/uuid"
)

const requestIDKey = "requestID"

// RequestLogging logs each request with a request ID, method, path, status,
// latency and client IP. Dashboard refreshes can take seconds while history
// lookups run, so slow requests are logged at warn level.
func RequestLogging(slowThreshold time.Duration) gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		latency := time.Since(start)
		fields := []any{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if slowThreshold > 0 && latency >= slowThreshold {
			log.Warnw("slow request", fields...)
			return
		}
		log.Infow("request", fields...)
	}
}
