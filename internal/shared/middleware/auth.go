package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"movies-backend/internal/shared"
	"movies-backend/internal/shared/response"
	"movies-backend/pkg/jwt"
)

const HeaderAPIKey = "x-api-key"

// TokenValidator is satisfied by *jwt.Manager.
type TokenValidator interface {
	ValidateToken(tokenString string) (*jwt.Claims, error)
}

// APIKeyAuth authenticates x-api-key callers as an admin acting for UserID.
type APIKeyAuth struct {
	Key    string
	UserID uuid.UUID
}

// Authenticate resolves the caller from an x-api-key header or a Bearer token.
// Requests carrying neither continue anonymously; a bad credential is rejected with 401.
func Authenticate(tokens TokenValidator, apiKey APIKeyAuth) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. API key
		if key := c.GetHeader(HeaderAPIKey); key != "" {
			if apiKey.Key == "" || subtle.ConstantTimeCompare([]byte(key), []byte(apiKey.Key)) != 1 {
				response.Unauthorized(c, "invalid api key")
				c.Abort()
				return
			}
			setPrincipal(c, apiKey.UserID, []string{jwt.RoleMember, jwt.RoleTrustedMember, jwt.RoleAdmin})
			c.Next()
			return
		}

		// 2. Bearer token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			response.Unauthorized(c, "invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString(shared.ContextKeyRequestID)).Msg("token rejected")
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		userID, err := claims.UserUUID()
		if err != nil {
			response.Unauthorized(c, "invalid user id in token")
			c.Abort()
			return
		}

		setPrincipal(c, userID, claims.Roles())
		c.Next()
	}
}

func setPrincipal(c *gin.Context, userID uuid.UUID, roles []string) {
	c.Set(shared.ContextKeyUserID, userID)
	c.Set(shared.ContextKeyRoles, roles)
}

// GetUserID returns the authenticated user id, nil for anonymous requests.
func GetUserID(c *gin.Context) *uuid.UUID {
	v, ok := c.Get(shared.ContextKeyUserID)
	if !ok {
		return nil
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		return nil
	}
	return &id
}

// GetRoles returns the caller's roles, empty for anonymous requests.
func GetRoles(c *gin.Context) []string {
	roles, _ := c.Get(shared.ContextKeyRoles)
	r, _ := roles.([]string)
	return r
}
