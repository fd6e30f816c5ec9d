// Package config handles a11y-live configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration.
type Config struct {
	// Mode is informational: development | production.
	Mode string `yaml:"mode"`
	// Realtime enables mutation observation. When false the engine runs
	// one initial analysis and stops watching. Defaults to true.
	Realtime *bool `yaml:"realtime"`
	// Rules is an explicit enabled-rule id list. Empty means all built-ins.
	Rules []string `yaml:"rules"`
	// Target scopes observation and analysis. Defaults to "body".
	Target string `yaml:"target"`
	// DebounceMS is the batch coalescing delay in milliseconds.
	DebounceMS int `yaml:"debounce_ms"`
	// MaxElements caps each analysis batch.
	MaxElements int `yaml:"max_elements"`
	// EnableUI wires the HTTP surface UI consumers sit on.
	EnableUI bool `yaml:"enable_ui"`

	Browser BrowserConfig `yaml:"browser"`
	Serve   ServeConfig   `yaml:"serve"`
	Store   StoreConfig   `yaml:"store"`
}

// BrowserConfig controls Chrome lifecycle for the live path.
type BrowserConfig struct {
	Remote          string        `yaml:"remote"`
	Headless        *bool         `yaml:"headless"`
	MemoryLimit     int64         `yaml:"memory_limit"`
	RecycleInterval time.Duration `yaml:"recycle_interval"`
	NavigateTimeout time.Duration `yaml:"navigate_timeout"`
}

// ServeConfig controls the HTTP surface.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// StoreConfig controls the audit-history database.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills unset fields in place.
func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = "production"
	}
	if c.Realtime == nil {
		t := true
		c.Realtime = &t
	}
	if c.Target == "" {
		c.Target = "body"
	}
	if c.DebounceMS <= 0 {
		c.DebounceMS = 250
	}
	if c.MaxElements <= 0 {
		c.MaxElements = 500
	}
	if c.Browser.MemoryLimit <= 0 {
		c.Browser.MemoryLimit = 1 << 30
	}
	if c.Browser.RecycleInterval <= 0 {
		c.Browser.RecycleInterval = 4 * time.Hour
	}
	if c.Browser.NavigateTimeout <= 0 {
		c.Browser.NavigateTimeout = 30 * time.Second
	}
	if c.Serve.Addr == "" {
		c.Serve.Addr = ":8710"
	}
}

// RealtimeEnabled reports whether mutation observation is on.
func (c *Config) RealtimeEnabled() bool {
	return c.Realtime == nil || *c.Realtime
}

// Debounce returns the batch coalescing delay as a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}
