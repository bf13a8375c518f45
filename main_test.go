package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/config"
	"storefront/internal/middleware"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test_jwt_secret"

func testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "storefront-test", Env: "test"},
		Server: config.ServerConfig{Port: ":0", ShutdownTimeout: time.Second},
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			DSN:          "file:" + strings.ReplaceAll(uuid.NewString(), "-", "") + "?mode=memory&cache=shared",
			MaxOpenConns: 1,
			AutoMigrate:  true,
		},
		Log:      config.LogConfig{Level: "error", Format: "json", Output: "stdout"},
		Auth:     config.AuthConfig{JWTSecret: testSecret},
		Checkout: config.CheckoutConfig{OrderNumberPrefix: "TST"},
	}
}

func TestNewApp_HealthAndMetrics(t *testing.T) {
	app, err := NewApp(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	resp, err := app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"status":"healthy"`)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	resp, err = app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err = io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "storefront_orders_placed_total")
}

func TestNewApp_ProtectedRoutes(t *testing.T) {
	app, err := NewApp(testConfig())
	require.NoError(t, err)
	t.Cleanup(func() { app.Close() })

	resp, err := app.Fiber.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token, err := middleware.NewToken([]byte(testSecret), "user-1", "customer", time.Hour)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Fiber.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewApp_RejectsUnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.Database.Driver = "oracle"

	_, err := NewApp(cfg)
	assert.Error(t, err)
}
