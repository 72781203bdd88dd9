package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "9090")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "America/Sao_Paulo", cfg.Timezone)
	assert.Equal(t, 60*time.Second, cfg.CacheTTL())
	assert.Equal(t, 12*time.Hour, cfg.CartTTL())
}

func TestLoad_KeysWithoutDefaultsFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "loja@example.com")
	t.Setenv("SMTP_PASSWORD", "hunter22")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "smtp.example.com", cfg.SMTPHost)
	assert.Equal(t, "loja@example.com", cfg.SMTPUser)
	assert.Equal(t, "hunter22", cfg.SMTPPassword)
}

func TestLocation_Invalid(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus"}
	_, err := cfg.Location()
	assert.Error(t, err)
}

func TestMaintenanceInterval_Fallback(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, time.Minute, cfg.MaintenanceInterval())
}
