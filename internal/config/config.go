package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds the whole application configuration.
// Populated from environment variables (optionally seeded from a .env file).
type Config struct {
	App       AppConfig
	Storage   StorageConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	LogLevel    string
	// TrustedProxies lists the IPs/CIDRs whose forwarding headers are believed.
	// Empty means the direct peer address is always the client.
	TrustedProxies []string
}

// StorageConfig selects the movie/rating backing store.
type StorageConfig struct {
	Backend string // postgres, memory
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Password string
	DB       int
	CacheTTL time.Duration // output cache lifetime
}

type JWTConfig struct {
	Secret   string
	Issuer   string
	Audience string
}

// AuthConfig configures the x-api-key header authentication.
type AuthConfig struct {
	APIKey       string
	APIKeyUserID uuid.UUID
}

type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
}

const (
	defaultJWTSecret    = "your-secret-key-change-in-production"
	defaultAPIKey       = "change-this-api-key"
	defaultAPIKeyUserID = "d8566de3-b1a6-4a9b-b842-8e3887a82e41"
)

// Load reads config from environment variables.
func Load() (*Config, error) {
	apiKeyUser, err := uuid.Parse(getEnv("API_KEY_USER_ID", defaultAPIKeyUserID))
	if err != nil {
		return nil, fmt.Errorf("invalid API_KEY_USER_ID: %w", err)
	}

	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:           getEnv("APP_NAME", "Movies API"),
			Environment:    getEnv("APP_ENV", "development"),
			Port:           getEnv("APP_PORT", "8080"),
			Version:        getEnv("APP_VERSION", "1.0.0"),
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			TrustedProxies: getEnvList("TRUSTED_PROXIES"),
		},
		Storage: StorageConfig{
			Backend: getEnv("STORAGE_BACKEND", "postgres"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: cacheTTL,
		},
		JWT: JWTConfig{
			Secret:   getEnv("JWT_SECRET", defaultJWTSecret),
			Issuer:   getEnv("JWT_ISSUER", "https://id.movies.local"),
			Audience: getEnv("JWT_AUDIENCE", "https://movies.local"),
		},
		Auth: AuthConfig{
			APIKey:       getEnv("API_KEY", defaultAPIKey),
			APIKeyUserID: apiKeyUser,
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvBool("RATE_LIMIT_ENABLED", true),
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 20),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 40),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects configurations that must never reach production.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "postgres", "memory":
	default:
		return fmt.Errorf("STORAGE_BACKEND must be postgres or memory, got %q", c.Storage.Backend)
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Auth.APIKey == defaultAPIKey {
			return fmt.Errorf("API_KEY must be set in production")
		}
		if c.Storage.Backend == "memory" {
			return fmt.Errorf("memory storage is not allowed in production")
		}
	}

	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	for _, proxy := range c.App.TrustedProxies {
		if net.ParseIP(proxy) != nil {
			continue
		}
		if _, _, err := net.ParseCIDR(proxy); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES entry %q is not an IP or CIDR", proxy)
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma-separated variable, dropping blank entries.
func getEnvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
