package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agora/server/internal/utils/logger"
	"github.com/agora/server/internal/utils/requestctx"
)

const (
	// RequestIDHeader is the header key for request ID.
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the context key for request ID.
	RequestIDKey = "request_id"

	maxRequestIDLength = 128
)

// RequestID returns a middleware that adds a request ID to each request.
// Client supplied IDs longer than 128 bytes are replaced.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.New().String()
		}

		c.Set(RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(requestctx.WithRequestID(c.Request.Context(), requestID))

		c.Next()
	}
}

// GetRequestID returns the request ID from context.
func GetRequestID(c *gin.Context) string {
	if id, exists := c.Get(RequestIDKey); exists {
		return id.(string)
	}
	return ""
}

// ContextLogger stores a request scoped logger, tagged with the request ID,
// in the request context. Place it after RequestID.
func ContextLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		l := log
		if id := GetRequestID(c); id != "" {
			l = log.With("request_id", id)
		}
		c.Request = c.Request.WithContext(logger.ContextWithLogger(c.Request.Context(), l))
		c.Next()
	}
}
