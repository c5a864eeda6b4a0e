package config_test

import (
	"testing"
	"time"

	"github.com/gisoinvest/auth-service/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("AUTH_SESSION_SECRET", "unit-test-secret")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Environment)
	assert.Equal(t, 720*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "unit-test-secret", cfg.Session.Secret)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AUTH_SESSION_SECRET", "unit-test-secret")
	t.Setenv("AUTH_SERVER_PORT", "9090")
	t.Setenv("AUTH_SESSION_TTL", "24h")
	t.Setenv("AUTH_DATABASE_URL", "postgres://example/auth")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "postgres://example/auth", cfg.Database.URL)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("AUTH_SESSION_SECRET", "")

	_, err := config.Load()
	assert.Error(t, err)
}
