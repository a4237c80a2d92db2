package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "3004", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
	assert.False(t, cfg.CookieCrossSite)
}

func TestLoadProduction(t *testing.T) {
	t.Setenv("ENV", "Production")
	t.Setenv("ALLOWED_ORIGINS", "https://app.staynest.app, https://staging.staynest.app")

	cfg := Load()
	assert.True(t, cfg.IsProduction())
	// Production implies a cross-site cookie even without COOKIE_CROSS_SITE.
	assert.True(t, cfg.CookieCrossSite)
	assert.Equal(t, []string{"https://app.staynest.app", "https://staging.staynest.app"}, cfg.AllowedOrigins)
}

func TestCookieCrossSiteOptIn(t *testing.T) {
	t.Setenv("COOKIE_CROSS_SITE", "true")

	assert.True(t, Load().CookieCrossSite)
}
