// Package config loads application configuration from environment variables.
// All variables use the COGNITY_ prefix.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers for the preferences store.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Storage     StorageConfig
	Database    DatabaseConfig
	Cache       CacheConfig
	Reading     ReadingConfig
	Reminder    ReminderConfig
	Log         LogConfig
	CatalogPath string // empty uses the embedded catalog
	EventLog    bool   // record events in Postgres
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int
	Host string
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects the preferences backend.
type StorageConfig struct {
	Driver     string
	SQLitePath string
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL      string
	MaxConns int
	MinConns int
}

// CacheConfig holds Dragonfly/Redis connection settings.
type CacheConfig struct {
	URL string
}

// ReadingConfig holds reading habit settings.
type ReadingConfig struct {
	DailyGoal int
}

// ReminderConfig holds the daily streak reminder settings.
type ReminderConfig struct {
	Enabled bool
	Time    string // HH:MM, local time
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string
	Format string
	File   string // rotated log file; empty logs to stdout
}

// LoadFile loads variables from an env file, without overriding ones
// already set, and then reads the configuration. A missing file is not an
// error.
func LoadFile(path string) (*Config, error) {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return Load()
}

// Load reads configuration from environment variables with COGNITY_ prefix.
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: envInt("COGNITY_SERVER_PORT", 8080),
			Host: envStr("COGNITY_SERVER_HOST", "127.0.0.1"),
		},
		Storage: StorageConfig{
			Driver:     strings.ToLower(envStr("COGNITY_STORAGE_DRIVER", DriverSQLite)),
			SQLitePath: envStr("COGNITY_SQLITE_PATH", "cognitypin.db"),
		},
		Database: DatabaseConfig{
			URL:      envStr("COGNITY_DATABASE_URL", ""),
			MaxConns: envInt("COGNITY_DATABASE_MAX_CONNS", 10),
			MinConns: envInt("COGNITY_DATABASE_MIN_CONNS", 1),
		},
		Cache: CacheConfig{
			URL: envStr("COGNITY_CACHE_URL", ""),
		},
		Reading: ReadingConfig{
			DailyGoal: envInt("COGNITY_DAILY_READING_GOAL", 3),
		},
		Reminder: ReminderConfig{
			Enabled: envBool("COGNITY_REMINDERS_ENABLED", false),
			Time:    envStr("COGNITY_REMINDER_TIME", "19:00"),
		},
		Log: LogConfig{
			Level:  envStr("COGNITY_LOG_LEVEL", "info"),
			Format: envStr("COGNITY_LOG_FORMAT", "json"),
			File:   envStr("COGNITY_LOG_FILE", ""),
		},
		CatalogPath: envStr("COGNITY_CATALOG_PATH", ""),
		EventLog:    envBool("COGNITY_EVENT_LOG", false),
	}

	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverSQLite:
		if c.Storage.SQLitePath == "" {
			return fmt.Errorf("COGNITY_SQLITE_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("COGNITY_DATABASE_URL is required for the postgres driver")
		}
	case DriverRedis:
		if c.Cache.URL == "" {
			return fmt.Errorf("COGNITY_CACHE_URL is required for the redis driver")
		}
	default:
		return fmt.Errorf("COGNITY_STORAGE_DRIVER must be one of memory, sqlite, postgres, redis, got %q", c.Storage.Driver)
	}

	if c.EventLog && c.Database.URL == "" {
		return fmt.Errorf("COGNITY_DATABASE_URL is required when COGNITY_EVENT_LOG is enabled")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("COGNITY_SERVER_PORT out of range: %d", c.Server.Port)
	}

	if c.Reading.DailyGoal <= 0 {
		return fmt.Errorf("COGNITY_DAILY_READING_GOAL must be positive, got %d", c.Reading.DailyGoal)
	}

	if c.Reminder.Enabled {
		if _, err := time.Parse("15:04", c.Reminder.Time); err != nil {
			return fmt.Errorf("COGNITY_REMINDER_TIME must be HH:MM, got %q", c.Reminder.Time)
		}
	}

	switch c.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("COGNITY_LOG_FORMAT must be 'json' or 'text', got %q", c.Log.Format)
	}

	return nil
}

// NeedsDatabase reports whether a Postgres pool must be opened.
func (c *Config) NeedsDatabase() bool {
	return c.Storage.Driver == DriverPostgres || c.EventLog
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		return strings.EqualFold(v, "true") || v == "1"
	}
	return fallback
}
