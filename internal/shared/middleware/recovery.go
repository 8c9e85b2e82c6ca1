package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"movies-backend/internal/shared"
	"movies-backend/internal/shared/response"
)

// Recovery turns a handler panic into a 500 envelope and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			log.Error().
				Str("request_id", c.GetString(shared.ContextKeyRequestID)).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("Panic recovered")

			if !c.Writer.Written() {
				response.InternalServerError(c, "Internal server error")
			}
			c.Abort()
		}()

		c.Next()
	}
}
