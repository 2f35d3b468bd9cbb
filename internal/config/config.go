// Package config loads the server settings from .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/thereayou/codecollab/internal/database"
)

// Config holds the application configuration.
type Config struct {
	Port string `mapstructure:"PORT"`

	StoreDriver   string `mapstructure:"STORE_DRIVER"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	MongoURI      string `mapstructure:"MONGO_URI"`
	MongoDatabase string `mapstructure:"MONGO_DATABASE"`
	RedisURL      string `mapstructure:"REDIS_URL"`

	MaxUsersPerRoom int `mapstructure:"MAX_USERS_PER_ROOM"`

	JWTSecret       string        `mapstructure:"JWT_SECRET"`
	IdentityTTL     time.Duration `mapstructure:"IDENTITY_TTL"`
	RequireIdentity bool          `mapstructure:"REQUIRE_IDENTITY"`

	AllowedOrigins []string `mapstructure:"ALLOWED_ORIGINS"`

	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	LogFormat       string        `mapstructure:"LOG_FORMAT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
}

// DefaultAllowedOrigins are the local frontend dev servers.
var DefaultAllowedOrigins = []string{
	"http://localhost:3000",
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:5000",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("STORE_DRIVER", database.DriverPostgres)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "codecollab")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("MAX_USERS_PER_ROOM", 10)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("IDENTITY_TTL", 720*time.Hour)
	v.SetDefault("REQUIRE_IDENTITY", false)
	v.SetDefault("ALLOWED_ORIGINS", DefaultAllowedOrigins)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("SHUTDOWN_TIMEOUT", 30*time.Second)
}

// Load reads .env.local, then .env, then the process environment.
// Variables already set in the environment win over the files.
func Load() (*Config, error) {
	if err := godotenv.Load(".env.local"); err != nil {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}
	return FromEnv()
}

// FromEnv builds the config from the environment only.
func FromEnv() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case database.DriverMemory, database.DriverMongo, database.DriverRedis:
	case database.DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.MaxUsersPerRoom <= 0 {
		return fmt.Errorf("MAX_USERS_PER_ROOM must be positive, got %d", c.MaxUsersPerRoom)
	}
	if c.RequireIdentity && c.JWTSecret == "" {
		return errors.New("REQUIRE_IDENTITY needs JWT_SECRET")
	}
	if c.IdentityTTL <= 0 {
		return errors.New("IDENTITY_TTL must be positive")
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

// StoreOptions maps the config onto database.Open options.
func (c *Config) StoreOptions(logger *slog.Logger) database.Options {
	return database.Options{
		Driver:        c.StoreDriver,
		DatabaseURL:   c.DatabaseURL,
		MongoURI:      c.MongoURI,
		MongoDatabase: c.MongoDatabase,
		RedisURL:      c.RedisURL,
		Logger:        logger,
	}
}

// NewLogger builds the process logger from LOG_LEVEL and LOG_FORMAT.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("unknown LOG_LEVEL %q", s)
	}
	return level, nil
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
