package middleware

import (
	"time"

	"pickupwatch/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GinZapLogger logs every request through zapLogger
func GinZapLogger(zapLogger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" || path == "/favicon.ico" {
			return
		}

		fields := []zap.Field{
			zap.String("request_id", c.GetString("RequestID")),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.Int("response_size", c.Writer.Size()),
		}

		if c.Request.URL.RawQuery != "" {
			fields = append(fields, zap.String("query", c.Request.URL.RawQuery))
		}

		if logger.DebugEnabled() {
			fields = append(fields, zap.String("user_agent", c.Request.UserAgent()))
		}

		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}

		statusCode := c.Writer.Status()
		switch {
		case statusCode >= 500:
			zapLogger.Error("Internal server error", fields...)
		case statusCode >= 400:
			zapLogger.Warn("Client request error", fields...)
		case statusCode >= 300:
			zapLogger.Info("Request redirect", fields...)
		default:
			zapLogger.Debug("HTTP request completed", fields...)
		}
	}
}
