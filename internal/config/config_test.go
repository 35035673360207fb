package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_SOURCE", "postgresql://localhost/formgate")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_xyz")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, int64(1000000), cfg.UpgradeThresholdKobo)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.PaystackBaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_SOURCE", "postgresql://localhost/formgate")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_live_abc")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("UPGRADE_THRESHOLD_KOBO", "2500000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, int64(2500000), cfg.UpgradeThresholdKobo)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
}

func TestLoadRequiredVariables(t *testing.T) {
	t.Setenv("DB_SOURCE", "")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_xyz")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DB_SOURCE", "postgresql://localhost/formgate")
	t.Setenv("PAYSTACK_SECRET_KEY", "")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadBadThreshold(t *testing.T) {
	t.Setenv("DB_SOURCE", "postgresql://localhost/formgate")
	t.Setenv("PAYSTACK_SECRET_KEY", "sk_test_xyz")
	t.Setenv("UPGRADE_THRESHOLD_KOBO", "lots")

	_, err := Load()
	assert.Error(t, err)
}
