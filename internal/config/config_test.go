package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"POSTGRES_DSN", "REDIS_ADDR", "APP_PORT", "ADMIN_PASSWORD", "APP_ENV", "AUTH_JWT_SECRET"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "parking-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Empty(t, cfg.Postgres.DSN)
	assert.Equal(t, "migrations", cfg.Postgres.MigrationsDir)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 60, cfg.Auth.AccessTokenTTLMinutes)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("POSTGRES_MAX_CONNS", "25")
	t.Setenv("AUTH_BCRYPT_COST", "4")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("HTTP_REQUEST_TIMEOUT_SECONDS", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.App.Port)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, int32(25), cfg.Postgres.MaxConns)
	assert.Equal(t, 4, cfg.Auth.BcryptCost)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Zero(t, cfg.App.RequestTimeout())
}

func TestLoadRejectsInvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "one")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsDevSecretInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("AUTH_JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestMalformedNumbersFallBack(t *testing.T) {
	t.Setenv("AUTH_ACCESS_TOKEN_TTL_MINUTES", "soon")
	t.Setenv("POSTGRES_RUN_MIGRATIONS", "maybe")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Auth.AccessTokenTTLMinutes)
	assert.True(t, cfg.Postgres.RunMigrations)
}
