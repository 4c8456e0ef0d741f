package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "github.com/agora/server/internal/utils/errors"
	"github.com/agora/server/internal/utils/logger"
)

// Recovery returns a middleware that recovers from panics.
// If log is nil, it will use a default logger.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.New(nil)
	}

	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("Panic recovered",
					"error", rec,
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"client_ip", c.ClientIP(),
					"request_id", GetRequestID(c),
					"stack", string(debug.Stack()),
				)

				appErr := apperrors.Internal("", fmt.Errorf("panic: %v", rec))
				c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
			}
		}()
		c.Next()
	}
}
