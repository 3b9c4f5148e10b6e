package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all console configuration.
type Config struct {
	// API configuration (REST endpoints)
	API APIConfig

	// Channel configuration (event push)
	Channel ChannelConfig

	// Session persistence
	Session SessionConfig

	// List controller defaults
	Lists ListsConfig

	// Login credentials used when no session is persisted
	Login LoginConfig

	// Logging configuration
	Logging LoggingConfig

	// Application metadata
	App AppConfig
}

// APIConfig holds REST client configuration.
type APIConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// ChannelConfig holds event channel configuration.
type ChannelConfig struct {
	URL         string
	DialTimeout time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// SessionConfig holds session persistence configuration.
type SessionConfig struct {
	Path string
}

// ListsConfig holds list controller defaults.
type ListsConfig struct {
	PageSize     int
	SearchSettle time.Duration
}

// LoginConfig holds the fallback credentials for establishing a session.
type LoginConfig struct {
	Email    string
	Password string
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// AppConfig holds application metadata.
type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := &Config{
		API: APIConfig{
			BaseURL:           getEnvOrDefault("API_BASE_URL", "http://localhost:5000/api"),
			Timeout:           getDurationOrDefault("API_TIMEOUT", 10*time.Second),
			RequestsPerSecond: getFloatOrDefault("API_RPS", 20),
			Burst:             getIntOrDefault("API_BURST", 40),
		},
		Channel: ChannelConfig{
			URL:         getEnvOrDefault("CHANNEL_URL", "ws://localhost:5000/ws"),
			DialTimeout: getDurationOrDefault("CHANNEL_DIAL_TIMEOUT", 10*time.Second),
			MaxAttempts: getIntOrDefault("CHANNEL_MAX_ATTEMPTS", 5),
			BaseDelay:   getDurationOrDefault("CHANNEL_BASE_DELAY", time.Second),
			MaxDelay:    getDurationOrDefault("CHANNEL_MAX_DELAY", 30*time.Second),
		},
		Session: SessionConfig{
			Path: getEnvOrDefault("SESSION_PATH", defaultSessionPath()),
		},
		Lists: ListsConfig{
			PageSize:     getIntOrDefault("LIST_PAGE_SIZE", 10),
			SearchSettle: getDurationOrDefault("LIST_SEARCH_SETTLE", 500*time.Millisecond),
		},
		Login: LoginConfig{
			Email:    os.Getenv("CONSOLE_EMAIL"),
			Password: os.Getenv("CONSOLE_PASSWORD"),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
		App: AppConfig{
			Name:        getEnvOrDefault("APP_NAME", "service-desk-console"),
			Version:     getEnvOrDefault("APP_VERSION", "dev"),
			Environment: getEnvOrDefault("APP_ENV", "development"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	var errs []string

	if c.API.BaseURL == "" {
		errs = append(errs, "API_BASE_URL is required")
	}

	if c.Channel.URL == "" {
		errs = append(errs, "CHANNEL_URL is required")
	} else if !strings.HasPrefix(c.Channel.URL, "ws://") && !strings.HasPrefix(c.Channel.URL, "wss://") {
		errs = append(errs, "CHANNEL_URL must use the ws or wss scheme")
	}

	if c.Session.Path == "" {
		errs = append(errs, "SESSION_PATH is required")
	}

	if c.Lists.PageSize < 1 {
		errs = append(errs, "LIST_PAGE_SIZE must be at least 1")
	}

	if c.Channel.BaseDelay > c.Channel.MaxDelay {
		errs = append(errs, "CHANNEL_BASE_DELAY cannot exceed CHANNEL_MAX_DELAY")
	}

	if len(errs) > 0 {
		return errors.New("configuration errors:\n  - " + strings.Join(errs, "\n  - "))
	}

	return nil
}

// IsDevelopment returns true if running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// String returns a redacted string representation of the config (safe for
// logging).
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{API: %s, Channel: %s, Session: %s, Login: [REDACTED], Environment: %s}",
		c.API.BaseURL,
		c.Channel.URL,
		c.Session.Path,
		c.App.Environment,
	)
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".service-desk-console/session.json"
	}
	return filepath.Join(home, ".service-desk-console", "session.json")
}

// Helper functions

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
