package middleware

import (
	"net/url"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agora/server/internal/utils/logger"
)

const listingKey = "listing"

// Listing describes the page a list handler served.
type Listing struct {
	Items   int
	HasMore bool
}

// SetListing records the page served by the current request. Logging and
// Metrics read it after the handler returns.
func SetListing(c *gin.Context, items int, hasMore bool) {
	c.Set(listingKey, Listing{Items: items, HasMore: hasMore})
}

// GetListing returns the page recorded by SetListing.
func GetListing(c *gin.Context) (Listing, bool) {
	v, ok := c.Get(listingKey)
	if !ok {
		return Listing{}, false
	}
	l, ok := v.(Listing)
	return l, ok
}

// isContinuation reports whether a list request asks for anything past the
// first page, either by cursor or by page number.
func isContinuation(q url.Values) bool {
	if q.Get("cursor") != "" {
		return true
	}
	page, err := strconv.Atoi(q.Get("page"))
	return err == nil && page > 1
}

// Logging returns a middleware that logs HTTP requests. Cursor tokens are
// replaced with a fingerprint so repeated pages can be correlated without
// writing the token.
func Logging(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.Query()
		cursor := query.Get("cursor")
		query.Del("cursor")

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		if route := c.FullPath(); route != "" && route != path {
			attrs = append(attrs, "route", route)
		}

		if cursor != "" {
			attrs = append(attrs, logger.Cursor(cursor))
		}
		for _, key := range []string{"limit", "page", "page_size"} {
			if v := query.Get(key); v != "" {
				attrs = append(attrs, key, v)
			}
		}
		if len(query) > 0 {
			attrs = append(attrs, "query", query.Encode())
		}

		if l, ok := GetListing(c); ok {
			attrs = append(attrs, "items", l.Items, "has_more", l.HasMore)
		}

		if userAgent := c.Request.UserAgent(); userAgent != "" {
			attrs = append(attrs, "user_agent", userAgent)
		}

		if requestID := GetRequestID(c); requestID != "" {
			attrs = append(attrs, "request_id", requestID)
		}

		// Errors attached by handlers via c.Error
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		msg := "HTTP Request"
		switch {
		case status >= 500:
			log.Error(msg, attrs...)
		case status >= 400:
			log.Warn(msg, attrs...)
		default:
			log.Info(msg, attrs...)
		}
	}
}
