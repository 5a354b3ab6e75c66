package keeperbot

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keeperbot.yaml")
	data := []byte(`
poll_interval: 2s
check_interval: 10m
call_cost: "1500"
harvest_policy: "estimated_assets > 0"
strategies:
  - cosmos1abc
`)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, cfg.PollInterval)
	require.Equal(t, 10*time.Minute, cfg.CheckInterval)
	require.Equal(t, DefaultConfig().RetryDelay, cfg.RetryDelay)
	require.Equal(t, "1500", cfg.CallCost)
	require.Equal(t, []string{"cosmos1abc"}, cfg.Strategies)
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero poll", func(c *Config) { c.PollInterval = 0 }},
		{"zero check", func(c *Config) { c.CheckInterval = 0 }},
		{"zero retry", func(c *Config) { c.RetryDelay = 0 }},
		{"zero per tick", func(c *Config) { c.MaxPerTick = 0 }},
		{"bad call cost", func(c *Config) { c.CallCost = "cheap" }},
		{"negative call cost", func(c *Config) { c.CallCost = "-1" }},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			require.Error(t, cfg.Validate())
		})
	}
	require.NoError(t, DefaultConfig().Validate())
}
