package database

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"catalog-backend/internal/config"
)

//go:embed schema.sql
var schema string

// Migrate applies the embedded schema. It runs over database/sql with the pq
// driver on a short-lived connection, separate from the pgx request pool.
// The schema is idempotent so running it on every boot is safe.
func Migrate(cfg config.DatabaseConfig) error {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()

	db.SetConnMaxLifetime(time.Minute)

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Info().Msg("Database schema applied")
	return nil
}
