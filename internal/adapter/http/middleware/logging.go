package middleware

import (
	"bytes"
	"io"
	"time"

	"kubetodo/pkg/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// bodyLogLimit caps how much of a request body lands in the log.
const bodyLogLimit = 4096

// LoggingMiddleware logs every inbound request before dispatch: method,
// path and, for mutations, the raw body. A second entry after dispatch
// carries status and latency. Purely observational, no control-flow impact.
func LoggingMiddleware(logger *logging.AppLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		var body string

		if c.Request.Body != nil && c.Request.Method != "GET" {
			data, err := io.ReadAll(io.LimitReader(c.Request.Body, bodyLogLimit))
			if err == nil {
				body = string(data)
				c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(data), c.Request.Body))
			}
		}

		logger.Logger.Ctx(c.Request.Context()).Info("HTTP Request received",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("body", body),
			zap.String("service", logger.ServiceName),
		)

		c.Next()

		latency := time.Since(start)

		if raw != "" {
			path = path + "?" + raw
		}

		logger.Logger.Ctx(c.Request.Context()).Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("service", logger.ServiceName),
		)
	}
}
