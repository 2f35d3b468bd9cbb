package config

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thereayou/codecollab/internal/database"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/codecollab")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, database.DriverPostgres, cfg.StoreDriver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "codecollab", cfg.MongoDatabase)
	assert.Equal(t, 10, cfg.MaxUsersPerRoom)
	assert.Equal(t, 720*time.Hour, cfg.IdentityTTL)
	assert.False(t, cfg.RequireIdentity)
	assert.Equal(t, DefaultAllowedOrigins, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "redis")
	t.Setenv("MAX_USERS_PER_ROOM", "4")
	t.Setenv("IDENTITY_TTL", "1h")
	t.Setenv("REQUIRE_IDENTITY", "true")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, database.DriverRedis, cfg.StoreDriver)
	assert.Equal(t, 4, cfg.MaxUsersPerRoom)
	assert.Equal(t, time.Hour, cfg.IdentityTTL)
	assert.True(t, cfg.RequireIdentity)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)

	opts := cfg.StoreOptions(nil)
	assert.Equal(t, database.DriverRedis, opts.Driver)
	assert.Equal(t, "redis://localhost:6379/0", opts.RedisURL)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			StoreDriver:     database.DriverMemory,
			MaxUsersPerRoom: 10,
			IdentityTTL:     time.Hour,
			LogLevel:        "info",
			LogFormat:       "text",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown driver", func(c *Config) { c.StoreDriver = "cassandra" }, "unknown STORE_DRIVER"},
		{"postgres without url", func(c *Config) { c.StoreDriver = database.DriverPostgres }, "DATABASE_URL"},
		{"zero capacity", func(c *Config) { c.MaxUsersPerRoom = 0 }, "MAX_USERS_PER_ROOM"},
		{"identity without secret", func(c *Config) { c.RequireIdentity = true }, "JWT_SECRET"},
		{"zero ttl", func(c *Config) { c.IdentityTTL = 0 }, "IDENTITY_TTL"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	cfg := Config{LogLevel: "warn", LogFormat: "json"}

	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", slog.String("room", "r1"))

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"room":"r1"`)
}
