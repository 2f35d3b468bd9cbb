package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thereayou/codecollab/internal/config"
	"github.com/thereayou/codecollab/internal/database"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		StoreDriver:     database.DriverMemory,
		MaxUsersPerRoom: 10,
		IdentityTTL:     time.Hour,
		AllowedOrigins:  config.DefaultAllowedOrigins,
		LogLevel:        "error",
		LogFormat:       "text",
		ShutdownTimeout: time.Second,
	}
}

func TestNewServerRoutes(t *testing.T) {
	srv, err := NewServer(context.Background(), testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/languages", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Languages []string `json:"languages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Languages, "javascript")

	// no JWT_SECRET: identity tokens are off
	w = httptest.NewRecorder()
	srv.Router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/identity", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Nil(t, srv.JWTManager)
}

func TestNewServerRequireIdentity(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = "secret"
	cfg.RequireIdentity = true

	srv, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	srv.Router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/identity", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestNewServerUnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.StoreDriver = "cassandra"

	_, err := NewServer(context.Background(), cfg)
	assert.Error(t, err)
}
