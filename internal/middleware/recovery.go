package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appErrors "github.com/noah-isme/academic-progression-api/pkg/errors"
	"github.com/noah-isme/academic-progression-api/pkg/middleware/requestid"
	"github.com/noah-isme/academic-progression-api/pkg/response"
)

// Recovery turns a handler panic into a ComputationError envelope.
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered",
					zap.Any("panic", r),
					zap.String("path", c.Request.URL.Path),
					zap.String("request_id", requestid.Value(c)),
					zap.Stack("stack"))
				response.Error(c, appErrors.Computation(fmt.Errorf("%v", r), "internal error"))
				c.Abort()
			}
		}()
		c.Next()
	}
}
