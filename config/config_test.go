package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 24, cfg.JWT.ExpireHours)
	assert.Equal(t, 400, cfg.QR.ImageSize)
	assert.Equal(t, 300, cfg.Webhook.ToleranceSeconds)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("QR_IMAGE_SIZE", "256")
	t.Setenv("JWT_EXPIRE_HOURS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 256, cfg.QR.ImageSize)
	assert.Equal(t, 24, cfg.JWT.ExpireHours, "bad integers fall back to default")
}

func TestDSN(t *testing.T) {
	db := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "pw", DBName: "carecircle", SSLMode: "disable",
	}
	assert.Equal(t, "postgres://app:pw@db:5432/carecircle?sslmode=disable", db.DSN())

	db.URL = "postgres://elsewhere/override"
	assert.Equal(t, "postgres://elsewhere/override", db.DSN())
}
