package middleware

import (
	"time"

	"github.com/Sooraj-Rao/college-resume-project/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const RequestIDHeader = "X-Request-ID"

// TracingMiddleware tags each request with an id and logs its outcome.
type TracingMiddleware struct {
	log *logger.Logger
}

func NewTracingMiddleware(log *logger.Logger) *TracingMiddleware {
	return &TracingMiddleware{log: log}
}

func (m *TracingMiddleware) TraceRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			m.log.Error("Request failed", fields...)
		case status >= 400:
			m.log.Warn("Request rejected", fields...)
		default:
			m.log.Info("Request completed", fields...)
		}
	}
}
