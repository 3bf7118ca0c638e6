package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/tachyon-beep/mnemosyne-sub011/pkg/utils"
)

// Configuration represents the complete cache configuration
type Configuration struct {
	Global     GlobalConfig     `yaml:"global"`
	Cache      CacheConfig      `yaml:"cache"`
	Memory     MemoryConfig     `yaml:"memory"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
}

// GlobalConfig represents global application settings
type GlobalConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// CacheConfig represents the cache core settings
type CacheConfig struct {
	TotalBudget    string        `yaml:"total_budget"`
	L1Capacity     string        `yaml:"l1_capacity"`
	L2Capacity     string        `yaml:"l2_capacity"`
	L3Capacity     string        `yaml:"l3_capacity"`
	DefaultTTL     time.Duration `yaml:"default_ttl"`
	AdaptiveSizing AdaptiveConfig `yaml:"adaptive_sizing"`
	Warming        WarmingConfig  `yaml:"warming"`
}

// AdaptiveConfig represents adaptive-sizing settings
type AdaptiveConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
}

// WarmingConfig represents cache-warming settings
type WarmingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MemoryConfig represents memory-monitor settings
type MemoryConfig struct {
	SampleInterval    time.Duration `yaml:"sample_interval"`
	HeapLimit         string        `yaml:"heap_limit"`
	MediumThreshold   float64       `yaml:"medium_threshold"`
	HighThreshold     float64       `yaml:"high_threshold"`
	CriticalThreshold float64       `yaml:"critical_threshold"`
}

// MonitoringConfig represents metrics settings
type MonitoringConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig represents Prometheus metrics settings
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Port      int    `yaml:"port"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace"`
}

// NewDefault returns a configuration with sensible defaults
func NewDefault() *Configuration {
	return &Configuration{
		Global: GlobalConfig{
			LogLevel:  "INFO",
			LogFormat: "text",
		},
		Cache: CacheConfig{
			TotalBudget: "512MB",
			L1Capacity:  "64MB",
			L2Capacity:  "160MB",
			L3Capacity:  "288MB",
			DefaultTTL:  time.Hour,
			AdaptiveSizing: AdaptiveConfig{
				Enabled:  true,
				Interval: 60 * time.Second,
			},
			Warming: WarmingConfig{
				Enabled: true,
			},
		},
		Memory: MemoryConfig{
			SampleInterval:    30 * time.Second,
			HeapLimit:         "",
			MediumThreshold:   0.6,
			HighThreshold:     0.75,
			CriticalThreshold: 0.9,
		},
		Monitoring: MonitoringConfig{
			Metrics: MetricsConfig{
				Enabled:   false,
				Port:      9091,
				Path:      "/metrics",
				Namespace: "mnemosyne",
			},
		},
	}
}

// LoadFromFile loads configuration from a YAML file
func (c *Configuration) LoadFromFile(filename string) error {
	data, err := os.ReadFile(filepath.Clean(filename))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Configuration) LoadFromEnv() error {
	if val := os.Getenv("MNEMOSYNE_LOG_LEVEL"); val != "" {
		c.Global.LogLevel = val
	}
	if val := os.Getenv("MNEMOSYNE_LOG_FORMAT"); val != "" {
		c.Global.LogFormat = val
	}

	if val := os.Getenv("MNEMOSYNE_TOTAL_BUDGET"); val != "" {
		c.Cache.TotalBudget = val
	}
	if val := os.Getenv("MNEMOSYNE_L1_CAPACITY"); val != "" {
		c.Cache.L1Capacity = val
	}
	if val := os.Getenv("MNEMOSYNE_L2_CAPACITY"); val != "" {
		c.Cache.L2Capacity = val
	}
	if val := os.Getenv("MNEMOSYNE_L3_CAPACITY"); val != "" {
		c.Cache.L3Capacity = val
	}
	if val := os.Getenv("MNEMOSYNE_DEFAULT_TTL"); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			c.Cache.DefaultTTL = duration
		}
	}
	if val := os.Getenv("MNEMOSYNE_ADAPTIVE_SIZING"); val != "" {
		c.Cache.AdaptiveSizing.Enabled = strings.ToLower(val) == "true"
	}
	if val := os.Getenv("MNEMOSYNE_WARMING"); val != "" {
		c.Cache.Warming.Enabled = strings.ToLower(val) == "true"
	}

	return nil
}

// SaveToFile saves the configuration to a YAML file
func (c *Configuration) SaveToFile(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(filename), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// TierCapacities resolves the three tier capacity strings into bytes
func (c *Configuration) TierCapacities() (l1, l2, l3 int64, err error) {
	if l1, err = utils.ParseBytes(c.Cache.L1Capacity); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid l1_capacity: %w", err)
	}
	if l2, err = utils.ParseBytes(c.Cache.L2Capacity); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid l2_capacity: %w", err)
	}
	if l3, err = utils.ParseBytes(c.Cache.L3Capacity); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid l3_capacity: %w", err)
	}
	return l1, l2, l3, nil
}

// TotalBudgetBytes resolves the total budget string into bytes
func (c *Configuration) TotalBudgetBytes() (int64, error) {
	budget, err := utils.ParseBytes(c.Cache.TotalBudget)
	if err != nil {
		return 0, fmt.Errorf("invalid total_budget: %w", err)
	}
	return budget, nil
}

// Validate validates the configuration
func (c *Configuration) Validate() error {
	if _, err := utils.ParseLogLevel(c.Global.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %s", c.Global.LogLevel)
	}

	if c.Global.LogFormat != "text" && c.Global.LogFormat != "json" {
		return fmt.Errorf("invalid log_format: %s (must be text or json)", c.Global.LogFormat)
	}

	budget, err := c.TotalBudgetBytes()
	if err != nil {
		return err
	}
	if budget <= 0 {
		return fmt.Errorf("total_budget must be greater than 0")
	}

	l1, l2, l3, err := c.TierCapacities()
	if err != nil {
		return err
	}
	if l1 <= 0 || l2 <= 0 || l3 <= 0 {
		return fmt.Errorf("tier capacities must be greater than 0")
	}
	if l1+l2+l3 > budget {
		return fmt.Errorf("tier capacities (%s) exceed total_budget (%s)",
			utils.FormatBytes(l1+l2+l3), utils.FormatBytes(budget))
	}

	if c.Cache.DefaultTTL <= 0 {
		return fmt.Errorf("default_ttl must be greater than 0")
	}

	if c.Cache.AdaptiveSizing.Enabled && c.Cache.AdaptiveSizing.Interval <= 0 {
		return fmt.Errorf("adaptive_sizing interval must be greater than 0")
	}

	if c.Memory.MediumThreshold >= c.Memory.HighThreshold ||
		c.Memory.HighThreshold >= c.Memory.CriticalThreshold {
		return fmt.Errorf("memory thresholds must be strictly increasing")
	}

	return nil
}
