package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"movies-backend/internal/shared"
)

const HeaderRequestID = "X-Request-ID"

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(shared.ContextKeyRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
