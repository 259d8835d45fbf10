package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"studymate-backend/internal/shared/telemetry"
)

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.EqualFold(c.Request.Method, "OPTIONS") {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)

		fields := map[string]any{
			"request_id":  RequestIDFromContext(c),
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"route":       c.FullPath(),
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"subject_id":  c.GetString("subjectId"),
			"document_id": c.GetString("documentId"),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if state := c.GetString("uploadState"); state != "" {
			fields["upload_state"] = state
		}
		telemetry.Info("request.complete", fields)
	}
}
