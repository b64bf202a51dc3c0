package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"records-backend/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	RecordShapeKey = "recordShape"
	OutcomeKey     = "outcome"
)

// Logging emits a structured log per request. Record contents are never
// logged, only the call shape and outcome.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		telemetry.Info("request.complete", map[string]any{
			"request_id":   RequestIDFromContext(c),
			"method":       c.Request.Method,
			"path":         c.Request.URL.Path,
			"route":        c.FullPath(),
			"status":       c.Writer.Status(),
			"duration_ms":  float64(latency.Microseconds()) / 1000.0,
			"actor":        ActorFromContext(c),
			"record_shape": c.GetString(RecordShapeKey),
			"outcome":      c.GetString(OutcomeKey),
			"client_ip":    c.ClientIP(),
			"user_agent":   c.Request.UserAgent(),
		})
	}
}
