package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RoundTrip(t *testing.T) {
	m := NewManager("secret", "issuer", "audience")
	userID := uuid.New()

	token, err := m.GenerateToken(TokenSpec{UserID: userID, Email: "a@b.c", Admin: true})
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)

	got, err := claims.UserUUID()
	require.NoError(t, err)
	assert.Equal(t, userID, got)
	assert.Equal(t, []string{RoleMember, RoleAdmin}, claims.Roles())
}

func TestManager_Rejects(t *testing.T) {
	m := NewManager("secret", "issuer", "audience")
	spec := TokenSpec{UserID: uuid.New()}

	tests := []struct {
		name   string
		issuer *Manager
		spec   TokenSpec
	}{
		{"wrong secret", NewManager("other", "issuer", "audience"), spec},
		{"wrong issuer", NewManager("secret", "someone-else", "audience"), spec},
		{"wrong audience", NewManager("secret", "issuer", "elsewhere"), spec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := tt.issuer.GenerateToken(tt.spec)
			require.NoError(t, err)
			_, err = m.ValidateToken(token)
			assert.Error(t, err)
		})
	}
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManager("secret", "issuer", "")
	past := time.Now().Add(-time.Hour)

	claims := Claims{
		UserID: uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "issuer",
			ExpiresAt: jwt.NewNumericDate(past),
			IssuedAt:  jwt.NewNumericDate(past.Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestClaims_Roles(t *testing.T) {
	assert.Equal(t, []string{RoleMember}, (&Claims{}).Roles())
	assert.Equal(t, []string{RoleMember, RoleTrustedMember}, (&Claims{TrustedMember: true}).Roles())

	_, err := (&Claims{UserID: "nope"}).UserUUID()
	assert.Error(t, err)
}
