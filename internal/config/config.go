package config

import (
	"log/slog"
	"os"
	"strings"
)

// Backend selects the dispatch log store implementation.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendRedis    Backend = "redis"
)

type Config struct {
	Port     string
	LogLevel slog.Level

	LogBackend Backend

	Postgres *PostgresConfig
	Redis    *RedisConfig
	Dispatch *DispatchConfig
	Channels *ChannelsConfig
	Trigger  *TriggerConfig
}

func Load() (*Config, error) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	backend := BackendPostgres
	if v := os.Getenv("DISPATCH_LOG_BACKEND"); v != "" {
		switch Backend(strings.ToLower(v)) {
		case BackendPostgres, BackendRedis:
			backend = Backend(strings.ToLower(v))
		default:
			return nil, ErrInvalidLogBackend
		}
	}

	redisConfig, err := LoadRedisConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:       port,
		LogLevel:   parseLogLevel(os.Getenv("LOG_LEVEL")),
		LogBackend: backend,
		Postgres:   LoadPostgresConfig(),
		Redis:      redisConfig,
		Dispatch:   LoadDispatchConfig(),
		Channels:   LoadChannelsConfig(),
		Trigger:    LoadTriggerConfig(),
	}, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}
