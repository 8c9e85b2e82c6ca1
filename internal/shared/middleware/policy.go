package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"movies-backend/internal/shared"
	"movies-backend/internal/shared/response"
)

// PolicyChecker is satisfied by *authz.Enforcer.
type PolicyChecker interface {
	AllowedAny(roles []string, object, action string) (bool, error)
}

// RequirePolicy rejects anonymous callers with 401 and callers whose roles
// do not grant action on object with 403. Must run after Authenticate.
func RequirePolicy(policy PolicyChecker, object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserID(c) == nil {
			response.Unauthorized(c, "authentication required")
			c.Abort()
			return
		}

		allowed, err := policy.AllowedAny(GetRoles(c), object, action)
		if err != nil {
			log.Error().
				Err(err).
				Str("request_id", c.GetString(shared.ContextKeyRequestID)).
				Str("object", object).
				Str("action", action).
				Msg("policy evaluation failed")
			response.InternalServerError(c, "Internal server error")
			c.Abort()
			return
		}
		if !allowed {
			response.Forbidden(c, "insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}
