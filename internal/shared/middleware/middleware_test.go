package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movies-backend/internal/authz"
	"movies-backend/internal/shared"
	"movies-backend/pkg/cache"
	"movies-backend/pkg/jwt"
)

const testAPIKey = "test-api-key"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *jwt.Manager {
	return jwt.NewManager("test-secret", "test-issuer", "test-audience")
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// whoami echoes the resolved principal.
func whoami(c *gin.Context) {
	body := gin.H{"roles": GetRoles(c)}
	if id := GetUserID(c); id != nil {
		body["userId"] = id.String()
	}
	c.JSON(http.StatusOK, body)
}

// ========================================
// AUTHENTICATE
// ========================================

func newAuthRouter(tokens *jwt.Manager, apiKeyUser uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(Authenticate(tokens, APIKeyAuth{Key: testAPIKey, UserID: apiKeyUser}))
	r.GET("/whoami", whoami)
	return r
}

func TestAuthenticate_Anonymous(t *testing.T) {
	r := newAuthRouter(newTokens(), uuid.New())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "userId")
}

func TestAuthenticate_APIKey(t *testing.T) {
	apiKeyUser := uuid.New()
	r := newAuthRouter(newTokens(), apiKeyUser)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderAPIKey, testAPIKey)
	w := serve(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), apiKeyUser.String())
	assert.Contains(t, w.Body.String(), jwt.RoleAdmin)

	req = httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderAPIKey, "wrong")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
}

func TestAuthenticate_Bearer(t *testing.T) {
	tokens := newTokens()
	r := newAuthRouter(tokens, uuid.New())

	userID := uuid.New()
	token, err := tokens.GenerateToken(jwt.TokenSpec{UserID: userID, TrustedMember: true})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(r, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
	assert.Contains(t, w.Body.String(), jwt.RoleTrustedMember)
	assert.NotContains(t, w.Body.String(), jwt.RoleAdmin)
}

func TestAuthenticate_RejectsBadTokens(t *testing.T) {
	r := newAuthRouter(newTokens(), uuid.New())

	foreign, err := jwt.NewManager("other-secret", "test-issuer", "test-audience").
		GenerateToken(jwt.TokenSpec{UserID: uuid.New()})
	require.NoError(t, err)

	for _, header := range []string{"Bearer " + foreign, "Bearer not-a-jwt", "Basic abc", "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", header)
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code, header)
	}
}

// ========================================
// REQUIRE POLICY
// ========================================

func TestRequirePolicy(t *testing.T) {
	enforcer, err := authz.NewEnforcer()
	require.NoError(t, err)
	tokens := newTokens()

	r := gin.New()
	r.Use(Authenticate(tokens, APIKeyAuth{Key: testAPIKey, UserID: uuid.New()}))
	r.DELETE("/movies", RequirePolicy(enforcer, authz.ObjectMovies, authz.ActionDelete), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.POST("/movies", RequirePolicy(enforcer, authz.ObjectMovies, authz.ActionWrite), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	member, err := tokens.GenerateToken(jwt.TokenSpec{UserID: uuid.New()})
	require.NoError(t, err)
	trusted, err := tokens.GenerateToken(jwt.TokenSpec{UserID: uuid.New(), TrustedMember: true})
	require.NoError(t, err)
	admin, err := tokens.GenerateToken(jwt.TokenSpec{UserID: uuid.New(), Admin: true})
	require.NoError(t, err)

	tests := []struct {
		name   string
		method string
		token  string
		apiKey string
		want   int
	}{
		{"anonymous write", http.MethodPost, "", "", http.StatusUnauthorized},
		{"member write", http.MethodPost, member, "", http.StatusForbidden},
		{"trusted write", http.MethodPost, trusted, "", http.StatusCreated},
		{"trusted delete", http.MethodDelete, trusted, "", http.StatusForbidden},
		{"admin delete", http.MethodDelete, admin, "", http.StatusNoContent},
		{"api key delete", http.MethodDelete, "", testAPIKey, http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/movies", nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			if tt.apiKey != "" {
				req.Header.Set(HeaderAPIKey, tt.apiKey)
			}
			assert.Equal(t, tt.want, serve(r, req).Code)
		})
	}
}

// ========================================
// API VERSION
// ========================================

func TestAPIVersion(t *testing.T) {
	r := gin.New()
	r.Use(APIVersion())
	r.GET("/v", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(shared.ContextKeyAPIVersion))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/v", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, DefaultAPIVersion, w.Body.String())
	assert.Equal(t, "1.0, 2.0", w.Header().Get(HeaderAPISupportedVersion))

	req := httptest.NewRequest(http.MethodGet, "/v", nil)
	req.Header.Set(HeaderAPIVersion, "2.0")
	assert.Equal(t, "2.0", serve(r, req).Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/v?api-version=2.0", nil))
	assert.Equal(t, "2.0", w.Body.String())

	w = serve(r, httptest.NewRequest(http.MethodGet, "/v?api-version=3.0", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ========================================
// OUTPUT CACHE
// ========================================

func TestOutputCache(t *testing.T) {
	store := cache.NewMemory()
	hits := 0

	r := gin.New()
	r.Use(OutputCache(store, shared.CacheTagMovies, time.Minute))
	r.GET("/movies", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{"hits": hits})
	})
	r.GET("/missing", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusNotFound, gin.H{})
	})

	first := serve(r, httptest.NewRequest(http.MethodGet, "/movies?b=2&a=1", nil))
	second := serve(r, httptest.NewRequest(http.MethodGet, "/movies?a=1&b=2", nil))

	assert.Equal(t, 1, hits)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))

	serve(r, httptest.NewRequest(http.MethodGet, "/movies?a=2", nil))
	assert.Equal(t, 2, hits)

	require.NoError(t, cache.EvictTag(t.Context(), store, shared.CacheTagMovies))
	serve(r, httptest.NewRequest(http.MethodGet, "/movies?a=1&b=2", nil))
	assert.Equal(t, 3, hits)

	serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, 5, hits, "non-200 responses are not cached")
}

func TestOutputCache_KeyedByUser(t *testing.T) {
	store := cache.NewMemory()
	tokens := newTokens()
	hits := 0

	r := gin.New()
	r.Use(
		Authenticate(tokens, APIKeyAuth{}),
		OutputCache(store, shared.CacheTagMovies, time.Minute),
	)
	r.GET("/movies", func(c *gin.Context) {
		hits++
		c.JSON(http.StatusOK, gin.H{})
	})

	token, err := tokens.GenerateToken(jwt.TokenSpec{UserID: uuid.New()})
	require.NoError(t, err)

	serve(r, httptest.NewRequest(http.MethodGet, "/movies", nil))
	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	serve(r, req)

	assert.Equal(t, 2, hits)
}

// ========================================
// RATE LIMIT
// ========================================

func TestRateLimit(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }

	// httptest requests arrive from 192.0.2.1.
	r := gin.New()
	require.NoError(t, r.SetTrustedProxies([]string{"192.0.2.0/24"}))
	r.Use(RateLimit(limiter))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	get := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Real-IP", ip)
		return serve(r, req).Code
	}

	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, get("10.0.0.1"))
	assert.Equal(t, http.StatusOK, get("10.0.0.2"))

	fixed = fixed.Add(time.Second)
	assert.Equal(t, http.StatusOK, get("10.0.0.1"))
}

func TestRateLimit_IgnoresForwardedHeadersFromUntrustedPeer(t *testing.T) {
	limiter := NewRateLimiter(1, 2)
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }

	r := gin.New()
	require.NoError(t, r.SetTrustedProxies(nil))
	r.Use(RateLimit(limiter))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for _, spoofed := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", spoofed)
		req.Header.Set("X-Real-IP", spoofed)
		codes = append(codes, serve(r, req).Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Len(t, limiter.limiters, 1)
	assert.Contains(t, limiter.limiters, "192.0.2.1")
}

func TestRateLimiter_Cleanup(t *testing.T) {
	limiter := NewRateLimiter(1, 1)
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return fixed }

	limiter.Allow("a")
	fixed = fixed.Add(time.Hour)
	limiter.Allow("b")

	assert.Equal(t, 1, limiter.Cleanup(30*time.Minute))
	assert.Len(t, limiter.limiters, 1)
}

// ========================================
// REQUEST ID
// ========================================

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(shared.ContextKeyRequestID)) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	assert.Equal(t, "abc-123", serve(r, req).Body.String())
}
