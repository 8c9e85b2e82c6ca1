package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"movies-backend/internal/shared"
)

// quietPaths are polled by infrastructure and only logged on failure.
var quietPaths = map[string]bool{
	"/_health": true,
	"/metrics": true,
}

// Logger writes one zerolog line per request, leveled by status.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		if quietPaths[path] && status < 400 {
			return
		}

		var event *zerolog.Event
		switch {
		case status >= 500:
			event = log.Error()
		case status >= 400:
			event = log.Warn()
		default:
			event = log.Info()
		}

		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Str("request_id", c.GetString(shared.ContextKeyRequestID)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", c.Request.URL.RawQuery).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.ClientIP()).
			Str("api_version", c.GetString(shared.ContextKeyAPIVersion)).
			Msg("HTTP Request")
	}
}
