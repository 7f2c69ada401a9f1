package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoroute/ecoroute/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 60*time.Second, cfg.GeminiTimeout)
	assert.Equal(t, 10*time.Minute, cfg.AirQualityTTL)
	assert.Equal(t, config.StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.PlanRateLimitRPM)
	assert.False(t, cfg.PubSubEnabled())
	assert.InDelta(t, 1.0, cfg.OTelSampleRatio, 1e-9)

	key, isDefault := cfg.SigningKey()
	assert.Equal(t, config.DevSigningKey, key)
	assert.True(t, isDefault)

	db := cfg.Database()
	assert.Equal(t, "localhost", db.Host)
	assert.Equal(t, 5432, db.Port)
	assert.Equal(t, 5*time.Minute, db.ConnMaxLifetime)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("GEMINI_API_KEY", "secret")
	t.Setenv("STORAGE_DRIVER", "postgres")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("AIR_QUALITY_CACHE_TTL", "2m")
	t.Setenv("PUBSUB_PROJECT_ID", "ecoroute-prod")

	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "secret", cfg.GeminiAPIKey)
	assert.Equal(t, config.StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 6543, cfg.Database().Port)
	assert.Equal(t, 2*time.Minute, cfg.AirQualityTTL)
	assert.True(t, cfg.PubSubEnabled())
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	content := "GEMINI_MODEL=gemini-2.5-pro\nADMIN_EMAIL=admin@ecoroute.app\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0o600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "gemini-2.5-pro", cfg.GeminiModel)
	assert.Equal(t, "admin@ecoroute.app", cfg.AdminEmail)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown storage driver", "STORAGE_DRIVER", "sqlite"},
		{"bad admin email", "ADMIN_EMAIL", "not-an-email"},
		{"stale shorter than fresh", "AIR_QUALITY_STALE_TTL", "1m"},
		{"bad log level", "LOG_LEVEL", "loud"},
		{"sample ratio above one", "OTEL_TRACES_SAMPLER_ARG", "1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := config.Load(t.TempDir())
			assert.Error(t, err)
		})
	}
}

func TestLoad_ProductionRequiresSigningKey(t *testing.T) {
	t.Setenv("APP_ENV", "production")

	_, err := config.Load(t.TempDir())
	assert.ErrorIs(t, err, config.ErrMissingSigningKey)

	t.Setenv("SESSION_SIGNING_KEY", "prod-key")
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	key, isDefault := cfg.SigningKey()
	assert.Equal(t, "prod-key", key)
	assert.False(t, isDefault)
}
