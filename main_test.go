package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"fintrack/internal/config"
	"fintrack/internal/database"
	"fintrack/internal/models"
	"fintrack/internal/notify"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.Set("DATABASE_DSN", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	v.Set("JWT_SECRET", "test_jwt_secret")
	v.Set("BCRYPT_COST", 4)
	cfg, err := config.FromViper(v)
	require.NoError(t, err)
	return cfg
}

func TestNewApp(t *testing.T) {
	cfg := testConfig(t)
	core, logs := observer.New(zap.InfoLevel)
	zl := zap.New(core)

	db, err := database.Open(cfg.DBDriver, cfg.DatabaseDSN, zl)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	links := notify.Links{VerificationURL: cfg.Mail.VerificationURL}

	app, tokens := newApp(db, cfg, notify.NewLogDispatcher(links, zl), zl)
	require.NotNil(t, tokens)

	t.Run("HealthCheck", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("UnauthenticatedAccess", func(t *testing.T) {
		for _, path := range []string{"/api/v1/wallets", "/api/v1/transactions", "/api/v1/transaction-tags", "/api/v1/auth", "/api/v1/users/u-1"} {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		}
	})

	t.Run("PublicRoutesSkipAuth", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/auth/verify?token=unknown", nil), -1)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		for _, path := range []string{"/nope", "/api/v1/nope", "/api/v1/auth/nope"} {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode, path)

			var body models.MessageResponse
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			resp.Body.Close()
			assert.NotEmpty(t, body.Message, path)
		}
	})

	requests := logs.FilterMessage("request").All()
	require.NotEmpty(t, requests)
	assert.Equal(t, "/health", requests[0].ContextMap()["path"])
}
