// Package config loads the settings redissentry needs to reach Redis.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the Redis connection settings recognized by the Sentry
// coordinator: host, port, password and db index.
type Config struct {
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	LogLevel string
}

// Load reads a .env file if present (a missing file is ignored) and falls
// back to process environment variables and hard-coded defaults.
func Load() *Config {
	_ = godotenv.Load()

	db, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		db = 0
	}

	return &Config{
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       db,
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
