package config

import (
	"fmt"
	"os"
)

const (
	databaseURLEnv = "DATABASE_URL"

	pgHostEnv     = "PG_HOST"
	pgPortEnv     = "PG_PORT"
	pgUserEnv     = "PG_USER"
	pgPasswordEnv = "PG_PASSWORD"
	pgDatabaseEnv = "PG_DATABASE"
	pgSSLModeEnv  = "PG_SSLMODE"
)

type PostgresConfig struct {
	DSN string
}

// LoadPostgresConfig prefers DATABASE_URL and falls back to assembling a DSN
// from the individual PG_* variables for local development.
func LoadPostgresConfig() *PostgresConfig {
	if dsn := os.Getenv(databaseURLEnv); dsn != "" {
		return &PostgresConfig{DSN: dsn}
	}

	host := os.Getenv(pgHostEnv)
	if host == "" {
		return &PostgresConfig{}
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host,
		getEnvOrDefault(pgPortEnv, "5432"),
		getEnvOrDefault(pgUserEnv, "postgres"),
		os.Getenv(pgPasswordEnv),
		getEnvOrDefault(pgDatabaseEnv, "reminder_dispatch"),
		getEnvOrDefault(pgSSLModeEnv, "disable"),
	)

	return &PostgresConfig{DSN: dsn}
}

func (c *PostgresConfig) Validate() error {
	if c == nil || c.DSN == "" {
		return ErrPostgresDSNMissing
	}
	return nil
}
