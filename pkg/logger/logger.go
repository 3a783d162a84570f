// Package logger builds the process-wide zap logger and its Gin access log.
package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/academic-progression-api/pkg/config"
	"github.com/noah-isme/academic-progression-api/pkg/middleware/requestid"
)

const serviceName = "academic-progression-api"

// New returns a production logger in production and a development logger
// elsewhere. An unparsable LOG_LEVEL falls back to info.
func New(cfg *config.Config) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	if cfg.Env == config.EnvProduction {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Encoding = "json"
	if cfg.Log.Format == "console" {
		zapCfg.Encoding = "console"
	}
	zapCfg.Level = level(cfg.Log.Level, zapCfg.Level)
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapCfg.InitialFields = map[string]interface{}{"service": serviceName, "env": cfg.Env}
	return zapCfg.Build()
}

func level(raw string, fallback zap.AtomicLevel) zap.AtomicLevel {
	if raw == "" {
		return fallback
	}
	lvl, err := zap.ParseAtomicLevel(raw)
	if err != nil {
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return lvl
}

// GinMiddleware writes one access log line per request, keyed by the route
// template. Paths in skip (health probes, scrapes) are not logged unless they
// fail. 5xx responses log at error level and 4xx at warn.
func GinMiddleware(l *zap.Logger, skip ...string) gin.HandlerFunc {
	quiet := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		quiet[p] = struct{}{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		if _, ok := quiet[c.Request.URL.Path]; ok && status < 500 {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("request_id", requestid.Value(c)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			l.Error("http_request", fields...)
		case status >= 400:
			l.Warn("http_request", fields...)
		default:
			l.Info("http_request", fields...)
		}
	}
}
