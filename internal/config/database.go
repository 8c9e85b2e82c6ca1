package config

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"movies-backend/internal/infrastructure/database"
)

// envReader parses typed environment values and collects every failure,
// so one bad deployment reports all of its mistakes at once.
type envReader struct {
	errs []error
}

func (r *envReader) intValue(key, fallback string) int {
	v, err := strconv.Atoi(getEnv(key, fallback))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return v
}

func (r *envReader) durationValue(key, fallback string) time.Duration {
	v, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("invalid %s: %w", key, err))
	}
	return v
}

func (r *envReader) err() error {
	return errors.Join(r.errs...)
}

// LoadDatabaseConfig reads the PostgreSQL settings from the environment.
func LoadDatabaseConfig() (*database.DBConfig, error) {
	env := &envReader{}

	cfg := &database.DBConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     env.intValue("DB_PORT", "5432"),
		Username: getEnv("DB_USER", "movies"),
		Password: getEnv("DB_PASSWORD", "secret"),
		DBName:   getEnv("DB_NAME", "movies"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),

		MaxConns:          int32(env.intValue("DB_MAX_CONNECTIONS", "25")),
		MinConns:          int32(env.intValue("DB_MIN_CONNECTIONS", "2")),
		MaxConnLifetime:   env.durationValue("DB_MAX_CONN_LIFETIME", "5m"),
		MaxConnIdleTime:   env.durationValue("DB_MAX_CONN_IDLE_TIME", "1m"),
		HealthCheckPeriod: env.durationValue("DB_HEALTH_CHECK_PERIOD", "1m"),

		MaxRetries:     env.intValue("DB_MAX_RETRIES", "5"),
		RetryDelay:     env.durationValue("DB_RETRY_DELAY", "1s"),
		ConnectTimeout: env.durationValue("DB_CONNECT_TIMEOUT", "10s"),
	}
	if err := env.err(); err != nil {
		return nil, err
	}

	if cfg.MinConns > cfg.MaxConns {
		return nil, fmt.Errorf("DB_MIN_CONNECTIONS (%d) exceeds DB_MAX_CONNECTIONS (%d)", cfg.MinConns, cfg.MaxConns)
	}
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	return cfg, nil
}
