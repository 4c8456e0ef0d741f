package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/agora/server/internal/infra/cache"
	apperrors "github.com/agora/server/internal/utils/errors"
)

const (
	// IdempotencyKeyHeader is the header for idempotency key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotentReplayHeader marks a response served from the idempotency cache.
	IdempotentReplayHeader = "Idempotent-Replayed"
	// idempotencyKeyPrefix is the cache key prefix.
	idempotencyKeyPrefix = "idempotency:"
	// defaultIdempotencyTTL is the default TTL for idempotency keys.
	defaultIdempotencyTTL = 24 * time.Hour
	// maxIdempotencyBody caps the request body hashed for key reuse checks.
	maxIdempotencyBody = 1 << 20
)

// IdempotencyConfig holds idempotency middleware configuration.
type IdempotencyConfig struct {
	// TTL is the time to live for idempotency keys.
	TTL time.Duration
	// Methods are the HTTP methods to apply idempotency check.
	// Default: POST, PUT, PATCH
	Methods []string
	// SkipFunc determines if the request should skip idempotency check.
	SkipFunc func(*gin.Context) bool
	// Logger receives cache faults. Optional.
	Logger *zap.Logger
}

// DefaultIdempotencyConfig returns the default idempotency configuration.
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     defaultIdempotencyTTL,
		Methods: []string{"POST", "PUT", "PATCH"},
	}
}

// idempotencyResponse stores the cached response.
type idempotencyResponse struct {
	StatusCode  int               `json:"status_code"`
	Headers     map[string]string `json:"headers"`
	Body        []byte            `json:"body"`
	RequestHash string            `json:"request_hash"`
}

// idempotencyResponseWriter wraps gin.ResponseWriter to capture the response.
type idempotencyResponseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *idempotencyResponseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *idempotencyResponseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency returns a middleware that replays the stored response for a
// repeated Idempotency-Key. Responses are kept in the cache service, so a
// cache outage disables replay instead of failing requests. Concurrent
// first requests with the same key are not serialized.
func Idempotency(svc *cache.Service, cfg IdempotencyConfig) gin.HandlerFunc {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultIdempotencyTTL
	}
	if len(cfg.Methods) == 0 {
		cfg.Methods = []string{"POST", "PUT", "PATCH"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	methodSet := make(map[string]bool)
	for _, m := range cfg.Methods {
		methodSet[m] = true
	}

	var responses *cache.Typed[*idempotencyResponse]
	if svc != nil {
		responses = cache.NewTyped(svc, "idempotency", cache.JSON[*idempotencyResponse]())
	}

	return func(c *gin.Context) {
		if responses == nil || !methodSet[c.Request.Method] {
			c.Next()
			return
		}

		if cfg.SkipFunc != nil && cfg.SkipFunc(c) {
			c.Next()
			return
		}

		idempotencyKey := c.GetHeader(IdempotencyKeyHeader)
		if idempotencyKey == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := generateIdempotencyKey(c, idempotencyKey)
		requestHash := bodyHashKey(c)

		cached, ok, err := responses.Get(ctx, cacheKey)
		if err != nil {
			cfg.Logger.Warn("idempotency lookup failed", zap.String("key", cacheKey), zap.Error(err))
		}
		if ok && cached != nil {
			if cached.RequestHash != requestHash {
				appErr := apperrors.ValidationError("Idempotency-Key was already used with a different request body")
				appErr.Code = "IDEMPOTENCY_KEY_REUSED"
				c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
				return
			}

			for k, v := range cached.Headers {
				c.Header(k, v)
			}
			c.Header(IdempotentReplayHeader, "true")
			c.Data(cached.StatusCode, cached.Headers["Content-Type"], cached.Body)
			c.Abort()
			return
		}

		respWriter := &idempotencyResponseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = respWriter

		c.Next()

		// Server errors are retryable, so they are not stored.
		status := c.Writer.Status()
		if status < http.StatusOK || status >= http.StatusInternalServerError {
			return
		}

		headers := make(map[string]string)
		for k := range c.Writer.Header() {
			if k == RequestIDHeader || strings.HasPrefix(k, "Access-Control-") {
				continue
			}
			headers[k] = c.Writer.Header().Get(k)
		}

		resp := &idempotencyResponse{
			StatusCode:  status,
			Headers:     headers,
			Body:        respWriter.body.Bytes(),
			RequestHash: requestHash,
		}
		if err := responses.Set(ctx, cacheKey, resp, cfg.TTL); err != nil {
			cfg.Logger.Warn("idempotency store failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
}

// generateIdempotencyKey derives the cache key from the method, the concrete
// request path and the client key.
func generateIdempotencyKey(c *gin.Context, idempotencyKey string) string {
	hash := sha256.Sum256([]byte(c.Request.Method + ":" + c.Request.URL.Path + ":" + idempotencyKey))
	return idempotencyKeyPrefix + hex.EncodeToString(hash[:])
}

// IdempotencyRequired returns a middleware that requires an idempotency key.
func IdempotencyRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "POST" || c.Request.Method == "PUT" || c.Request.Method == "PATCH" {
			if c.GetHeader(IdempotencyKeyHeader) == "" {
				appErr := apperrors.BadRequest("Idempotency-Key header is required for this request")
				appErr.Code = "IDEMPOTENCY_KEY_REQUIRED"
				c.AbortWithStatusJSON(appErr.StatusCode, appErr.ToResponse())
				return
			}
		}
		c.Next()
	}
}

// bodyHashKey hashes the request body and restores it for later handlers.
func bodyHashKey(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxIdempotencyBody))
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))

	hash := sha256.Sum256(body)
	return hex.EncodeToString(hash[:])
}
