package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefault(t *testing.T) {
	cfg := NewDefault()

	require.NoError(t, cfg.Validate())

	assert.Equal(t, "INFO", cfg.Global.LogLevel)
	assert.Equal(t, time.Hour, cfg.Cache.DefaultTTL)
	assert.True(t, cfg.Cache.AdaptiveSizing.Enabled)
	assert.Equal(t, 60*time.Second, cfg.Cache.AdaptiveSizing.Interval)

	l1, l2, l3, err := cfg.TierCapacities()
	require.NoError(t, err)
	assert.Equal(t, int64(64*1024*1024), l1)
	assert.Equal(t, int64(160*1024*1024), l2)
	assert.Equal(t, int64(288*1024*1024), l3)

	budget, err := cfg.TotalBudgetBytes()
	require.NoError(t, err)
	assert.Equal(t, int64(512*1024*1024), budget)
	assert.Equal(t, budget, l1+l2+l3)
}

func TestLoadFromFile(t *testing.T) {
	content := `
global:
  log_level: DEBUG
  log_format: json
cache:
  total_budget: 1GB
  l1_capacity: 128MB
  l2_capacity: 256MB
  l3_capacity: 512MB
  default_ttl: 30m
  adaptive_sizing:
    enabled: false
`
	path := filepath.Join(t.TempDir(), "cache.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg := NewDefault()
	require.NoError(t, cfg.LoadFromFile(path))

	assert.Equal(t, "DEBUG", cfg.Global.LogLevel)
	assert.Equal(t, "json", cfg.Global.LogFormat)
	assert.Equal(t, "1GB", cfg.Cache.TotalBudget)
	assert.Equal(t, 30*time.Minute, cfg.Cache.DefaultTTL)
	assert.False(t, cfg.Cache.AdaptiveSizing.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadFromFile_Missing(t *testing.T) {
	cfg := NewDefault()
	assert.Error(t, cfg.LoadFromFile("/nonexistent/cache.yaml"))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MNEMOSYNE_LOG_LEVEL", "WARN")
	t.Setenv("MNEMOSYNE_TOTAL_BUDGET", "2GB")
	t.Setenv("MNEMOSYNE_L1_CAPACITY", "256MB")
	t.Setenv("MNEMOSYNE_DEFAULT_TTL", "15m")
	t.Setenv("MNEMOSYNE_ADAPTIVE_SIZING", "false")

	cfg := NewDefault()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "WARN", cfg.Global.LogLevel)
	assert.Equal(t, "2GB", cfg.Cache.TotalBudget)
	assert.Equal(t, "256MB", cfg.Cache.L1Capacity)
	assert.Equal(t, 15*time.Minute, cfg.Cache.DefaultTTL)
	assert.False(t, cfg.Cache.AdaptiveSizing.Enabled)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Configuration)
		wantErr string
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Configuration) {},
			wantErr: "",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Configuration) { c.Global.LogLevel = "verbose" },
			wantErr: "invalid log_level",
		},
		{
			name:    "bad log format",
			mutate:  func(c *Configuration) { c.Global.LogFormat = "xml" },
			wantErr: "invalid log_format",
		},
		{
			name:    "unparseable budget",
			mutate:  func(c *Configuration) { c.Cache.TotalBudget = "lots" },
			wantErr: "invalid total_budget",
		},
		{
			name: "tiers exceed budget",
			mutate: func(c *Configuration) {
				c.Cache.TotalBudget = "100MB"
			},
			wantErr: "exceed total_budget",
		},
		{
			name:    "zero ttl",
			mutate:  func(c *Configuration) { c.Cache.DefaultTTL = 0 },
			wantErr: "default_ttl",
		},
		{
			name: "adaptive interval required when enabled",
			mutate: func(c *Configuration) {
				c.Cache.AdaptiveSizing.Enabled = true
				c.Cache.AdaptiveSizing.Interval = 0
			},
			wantErr: "adaptive_sizing interval",
		},
		{
			name: "thresholds must increase",
			mutate: func(c *Configuration) {
				c.Memory.MediumThreshold = 0.9
			},
			wantErr: "thresholds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cache.yaml")

	cfg := NewDefault()
	cfg.Cache.TotalBudget = "1GB"
	cfg.Cache.L3Capacity = "600MB"
	require.NoError(t, cfg.SaveToFile(path))

	loaded := NewDefault()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, cfg.Cache.TotalBudget, loaded.Cache.TotalBudget)
	assert.Equal(t, cfg.Cache.L3Capacity, loaded.Cache.L3Capacity)
}
