package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, 8, cfg.Fast.MaxInFlight)
	assert.Equal(t, 4, cfg.Primary.MaxInFlight)
	assert.Equal(t, 4, cfg.Precision.MaxInFlight)
	assert.Equal(t, 6000, cfg.ContextBudget)
	assert.Equal(t, 15*time.Second, cfg.KeepaliveInterval)
	assert.Equal(t, 1536, cfg.EmbedDim)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_ADDR", ":9999")
	t.Setenv("FAST_MODEL", "gpt-test-mini")
	t.Setenv("PRECISION_MAX_IN_FLIGHT", "2")
	t.Setenv("CONTEXT_BUDGET", "1234")
	t.Setenv("KEEPALIVE_INTERVAL", "5s")

	cfg := Load()

	assert.Equal(t, ":9999", cfg.ServerAddr)
	assert.Equal(t, "gpt-test-mini", cfg.Fast.Model)
	assert.Equal(t, 2, cfg.Precision.MaxInFlight)
	assert.Equal(t, 1234, cfg.ContextBudget)
	assert.Equal(t, 5*time.Second, cfg.KeepaliveInterval)
}
