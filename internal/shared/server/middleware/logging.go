package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-matcher/internal/shared/telemetry"
)

// Context keys handlers may set to enrich the request log line.
const (
	AnalysisStatusKey = "analysisStatus"
	IngestKindKey     = "ingestKind"
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
			"status":      c.Writer.Status(),
			"duration_ms": float64(latency.Microseconds()) / 1000.0,
			"user_id":     UserIDFromContext(c),
			"client_ip":   c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		}
		if v := c.GetString(AnalysisStatusKey); v != "" {
			fields["analysis_status"] = v
		}
		if v := c.GetString(IngestKindKey); v != "" {
			fields["ingest_kind"] = v
		}
		telemetry.Info("request.complete", fields)
	}
}
