package database

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/schema.sql
var schemaSQL string

// Initialize creates the movies, genres and ratings tables when missing.
func (db *PostgresDB) Initialize(ctx context.Context) error {
	if db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}
	return ApplySchema(ctx, db.Pool)
}

// ApplySchema runs the embedded schema script. The script is idempotent.
func ApplySchema(ctx context.Context, pool *pgxpool.Pool) error {
	// no arguments → simple protocol, so the multi-statement script runs in one round trip
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	log.Info().Msg("[DATABASE] schema is up to date")
	return nil
}
