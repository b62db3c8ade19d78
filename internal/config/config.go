// Package config loads server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Store backends
const (
	BackendPostgres = "postgres"
	BackendMongo    = "mongo"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds server settings
type Config struct {
	StoreBackend      string        `validate:"required,oneof=postgres mongo"`
	DatabaseURL       string        `validate:"required_if=StoreBackend postgres"`
	MongoURI          string        `validate:"required_if=StoreBackend mongo"`
	MongoDatabase     string        `validate:"required_if=StoreBackend mongo"`
	PublicBaseURL     string        `validate:"required,url"`
	Port              string        `validate:"required,numeric"`
	JWTSecret         string        `validate:"required,min=16"`
	LogLevel          string        `validate:"oneof=debug info warn error"`
	LogFormat         string        `validate:"oneof=text json"`
	RateLimitRequests int           `validate:"gt=0"`
	RateLimitWindow   time.Duration `validate:"gt=0"`
	AccountCacheTTL   time.Duration `validate:"gte=0"`
	SkipMigrations    bool
}

// DefaultConfig returns the settings used when a variable is unset
func DefaultConfig() Config {
	return Config{
		StoreBackend:      BackendPostgres,
		MongoDatabase:     "murmur",
		PublicBaseURL:     "http://localhost:8081/",
		Port:              "8081",
		LogLevel:          "info",
		LogFormat:         "text",
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		AccountCacheTTL:   5 * time.Minute,
	}
}

// Load reads an optional .env file, then the environment, and validates
// the result
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load .env file", "error", err)
	}

	cfg := FromEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv builds a Config from getenv over the defaults.
// Malformed numeric values are logged and the default kept.
func FromEnv(getenv func(string) string) Config {
	cfg := DefaultConfig()

	if v := getenv("STORE_BACKEND"); v != "" {
		cfg.StoreBackend = strings.ToLower(v)
	}
	cfg.DatabaseURL = getenv("DATABASE_URL")
	cfg.MongoURI = getenv("MONGO_URI")
	if v := getenv("MONGO_DATABASE"); v != "" {
		cfg.MongoDatabase = v
	}
	if v := getenv("PUBLIC_BASE_URL"); v != "" {
		cfg.PublicBaseURL = v
	}
	if v := getenv("APPVIEW_PORT"); v != "" {
		cfg.Port = v
	}
	cfg.JWTSecret = getenv("JWT_SECRET")
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}

	if v := getenv("RATE_LIMIT_REQUESTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.RateLimitRequests = n
		} else {
			slog.Warn("invalid RATE_LIMIT_REQUESTS value, using default",
				"value", v,
				"default", cfg.RateLimitRequests,
			)
		}
	}

	if v := getenv("RATE_LIMIT_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.RateLimitWindow = d
		} else {
			slog.Warn("invalid RATE_LIMIT_WINDOW value, using default",
				"value", v,
				"default", cfg.RateLimitWindow.String(),
			)
		}
	}

	if v := getenv("ACCOUNT_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.AccountCacheTTL = d
		} else {
			slog.Warn("invalid ACCOUNT_CACHE_TTL value, using default",
				"value", v,
				"default", cfg.AccountCacheTTL.String(),
			)
		}
	}

	if v := getenv("SKIP_MIGRATIONS"); v != "" {
		cfg.SkipMigrations = v == "true" || v == "1"
	}

	return cfg
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the config, reporting the first failing field
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("%w: %s failed %q", ErrInvalidConfig, fe.Field(), fe.Tag())
	}
	return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
}

// SlogLevel maps LogLevel to a slog level
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from LogFormat and LogLevel
func (c Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
