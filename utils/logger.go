package utils

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NewLogger builds the process logger. APP_ENV=development switches to the
// human-readable console encoder.
func NewLogger() (*zap.Logger, error) {
	if os.Getenv("APP_ENV") == "development" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// RequestID tags every request with a v4 UUID, exposed to handlers via the
// context and to callers via the X-Request-ID header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// RequestLogger returns the base logger annotated with the request id.
func RequestLogger(c *gin.Context, base *zap.Logger) *zap.Logger {
	if id, ok := c.Get("request_id"); ok {
		if s, ok := id.(string); ok {
			return base.With(zap.String("request_id", s))
		}
	}
	return base
}
