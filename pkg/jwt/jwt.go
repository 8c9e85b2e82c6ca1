package jwt

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role names derived from token claims.
const (
	RoleAdmin         = "admin"
	RoleTrustedMember = "trusted_member"
	RoleMember        = "member"
)

// Claims is the bearer token payload issued by the identity service.
type Claims struct {
	UserID        string `json:"userid"`
	Email         string `json:"email,omitempty"`
	Admin         bool   `json:"admin,omitempty"`
	TrustedMember bool   `json:"trusted_member,omitempty"`
	jwt.RegisteredClaims
}

// Roles maps the boolean claims onto role names. Every authenticated user is a member.
func (c *Claims) Roles() []string {
	roles := []string{RoleMember}
	if c.TrustedMember {
		roles = append(roles, RoleTrustedMember)
	}
	if c.Admin {
		roles = append(roles, RoleAdmin)
	}
	return roles
}

// UserUUID parses the userid claim.
func (c *Claims) UserUUID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid userid claim: %w", err)
	}
	return id, nil
}

// Manager validates (and, for local tooling and tests, issues) HS256 tokens.
type Manager struct {
	secret   []byte
	issuer   string
	audience string
}

func NewManager(secret, issuer, audience string) *Manager {
	return &Manager{secret: []byte(secret), issuer: issuer, audience: audience}
}

// TokenSpec describes a token to mint.
type TokenSpec struct {
	UserID        uuid.UUID
	Email         string
	Admin         bool
	TrustedMember bool
	TTL           time.Duration
}

// GenerateToken signs a token for spec.
func (m *Manager) GenerateToken(spec TokenSpec) (string, error) {
	now := time.Now()
	ttl := spec.TTL
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}

	claims := Claims{
		UserID:        spec.UserID.String(),
		Email:         spec.Email,
		Admin:         spec.Admin,
		TrustedMember: spec.TrustedMember,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   spec.Email,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if m.audience != "" {
		claims.Audience = jwt.ClaimStrings{m.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken verifies signature, expiry, issuer and audience and returns the claims.
func (m *Manager) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}
	if m.audience != "" {
		opts = append(opts, jwt.WithAudience(m.audience))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	if _, err := claims.UserUUID(); err != nil {
		return nil, err
	}

	return claims, nil
}
