/*
Package config loads server configuration.

SOURCES (later wins):
  1. Defaults
  2. .env file in the working directory, if present (godotenv)
  3. Environment variables
  4. Command-line flags -port and -db (applied by cmd/server)

VARIABLES:
  APP_PORT                HTTP port (default 8080)
  DB_PATH                 SQLite path, ":memory:" allowed (default calendar.db)
  APP_ENV                 development | production (default development)
  LOG_LEVEL               debug | info | warn | error (default info)
  CORS_ORIGINS            Comma-separated allowed origins
  SESSION_TTL             Idle time before a calendar session is evicted (default 30m)
  SESSION_SWEEP_INTERVAL  How often idle sessions are swept (default 1m)
*/
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Session SessionConfig
}

// AppConfig holds application configuration
type AppConfig struct {
	Port        int
	Env         string
	LogLevel    string
	CORSOrigins []string
}

type DBConfig struct {
	Path string
}

// SessionConfig controls idle calendar session eviction.
type SessionConfig struct {
	TTL           time.Duration
	SweepInterval time.Duration
}

// Load reads .env (optional) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the environment only.
func FromEnv() (*Config, error) {
	config := &Config{}

	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}
	config.App = AppConfig{
		Port:        appPort,
		Env:         getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"http://localhost:5173", "http://localhost:8080"}),
	}

	config.DB = DBConfig{Path: getEnv("DB_PATH", "calendar.db")}

	ttl, err := time.ParseDuration(getEnv("SESSION_TTL", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	sweep, err := time.ParseDuration(getEnv("SESSION_SWEEP_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_SWEEP_INTERVAL: %w", err)
	}
	config.Session = SessionConfig{TTL: ttl, SweepInterval: sweep}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("APP_PORT out of range: %d", c.App.Port)
	}
	if c.DB.Path == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.Session.SweepInterval <= 0 {
		return fmt.Errorf("SESSION_SWEEP_INTERVAL must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LOG_LEVEL.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q", c.App.LogLevel)
	}
	return level, nil
}

func (c *Config) IsProduction() bool { return c.App.Env == "production" }

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
