// Package config handles companion-hub configuration loading.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order.
// An explicit path (from -config flag) is checked first.
// Then: ./config.yaml, ~/.config/hub/config.yaml, /config/config.yaml,
// /etc/hub/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "hub", "config.yaml"))
	}

	paths = append(paths, "/config/config.yaml") // Container convention
	paths = append(paths, "/etc/hub/config.yaml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all companion-hub configuration.
type Config struct {
	Channel   ChannelConfig   `yaml:"channel"`
	Probe     ProbeConfig     `yaml:"probe"`
	Brain     BrainConfig     `yaml:"brain"`
	Anthropic AnthropicConfig `yaml:"anthropic"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	DataDir   string          `yaml:"data_dir"`
	LogLevel  string          `yaml:"log_level"`
}

// ChannelConfig defines the loopback WebSocket command/event channel.
type ChannelConfig struct {
	// Address is the bind address. Only loopback addresses are accepted;
	// a non-loopback value is rejected at startup.
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// ProbeConfig defines the external platform-probe binaries and timeout.
type ProbeConfig struct {
	// TimeoutMS bounds every probe call (active window, clipboard, idle,
	// cursor, screen capture). Per spec a timeout yields an empty result,
	// never an error that propagates.
	TimeoutMS int `yaml:"timeout_ms"`
}

// BrainConfig defines the in-process fallback brain (Brain Triggers, C8).
type BrainConfig struct {
	Enabled bool `yaml:"enabled"`
	// BatchWindowMS is the low-importance batch collapse window; defaults
	// to 10000 (10s) per spec §4.7.
	BatchWindowMS int `yaml:"batch_window_ms"`
}

// AnthropicConfig defines the external model API used by the fallback brain.
type AnthropicConfig struct {
	APIKey string `yaml:"api_key"`
}

// Configured reports whether an Anthropic API key is present.
func (c AnthropicConfig) Configured() bool {
	return c.APIKey != ""
}

// MQTTConfig defines the optional telemetry mirror target (SPEC_FULL
// domain-stack addition: fired triggers are mirrored here for external
// dashboards, never consumed as a command path back into the hub).
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"` // e.g. tcp://127.0.0.1:1883
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)

	return &cfg, nil
}

// applyDefaults fills in zero-valued fields with the documented defaults
// from spec.md so an empty or partial config.yaml still produces a
// working hub.
func applyDefaults(cfg *Config) {
	if cfg.Channel.Address == "" {
		cfg.Channel.Address = "127.0.0.1"
	}
	if cfg.Channel.Port == 0 {
		cfg.Channel.Port = 9320
	}
	if cfg.Probe.TimeoutMS == 0 {
		cfg.Probe.TimeoutMS = 4000
	}
	if cfg.Brain.BatchWindowMS == 0 {
		cfg.Brain.BatchWindowMS = 10_000
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "."
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = "hub"
	}
}
