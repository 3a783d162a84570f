// Package requestid tags each request with a correlation ID that is echoed
// in the response header and carried on the request context for logging.
package requestid

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the correlation ID in both directions.
const Header = "X-Request-ID"

const (
	ginKey    = "request_id"
	maxLength = 64
)

type ctxKey struct{}

// Middleware reuses a well-formed caller supplied ID or generates a new one.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(Header)
		if !wellFormed(id) {
			id = uuid.NewString()
		}
		c.Set(ginKey, id)
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), id))
		c.Header(Header, id)
		c.Next()
	}
}

// Value returns the request ID stored in the Gin context.
func Value(c *gin.Context) string {
	return c.GetString(ginKey)
}

// WithContext stores id on ctx.
func WithContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID carried by ctx, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// wellFormed rejects empty, oversized or non-token IDs so client input never
// reaches the logs unfiltered.
func wellFormed(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return true
}
