package bridge

import (
	"log"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sanbotlabs/mcu-bridge/internal/safety"
)

// Config holds all bridge daemon configuration.
type Config struct {
	// Transport selects "usb" or "serial".
	Transport TransportConfig `yaml:"transport"`

	// Send/receive behavior
	WriteTimeoutMs int `yaml:"write_timeout_ms"`
	ReadTimeoutMs  int `yaml:"read_timeout_ms"`
	Retries        int `yaml:"retries"`

	// Heartbeat
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`

	// Safety
	Safety SafetyConfig `yaml:"safety"`
}

type TransportConfig struct {
	Type string `yaml:"type"` // "usb" or "serial"

	// Serial fallback ports (CDC-ACM). Unused for "usb".
	HeadPort   string `yaml:"head_port"`
	BottomPort string `yaml:"bottom_port"`
	BaudRate   int    `yaml:"baud_rate"`
}

type HeartbeatConfig struct {
	Enabled    bool `yaml:"enabled"`
	IntervalMs int  `yaml:"interval_ms"`
	Head       bool `yaml:"head"`
}

type SafetyConfig struct {
	Unsafe bool          `yaml:"unsafe"`
	Limits safety.Limits `yaml:"limits"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Transport: TransportConfig{
			Type:       "usb",
			HeadPort:   "/dev/ttySanbotHead",
			BottomPort: "/dev/ttySanbotBottom",
			BaudRate:   115200,
		},
		WriteTimeoutMs: 1000,
		ReadTimeoutMs:  1000,
		Retries:        1,
		Heartbeat: HeartbeatConfig{
			Enabled:    true,
			IntervalMs: 1500,
			Head:       false,
		},
		Safety: SafetyConfig{
			Unsafe: false,
			Limits: safety.DefaultLimits(),
		},
	}
}

// LoadConfig reads config from a YAML file, then applies environment
// variable overrides. Falls back to defaults if the file is missing.
func LoadConfig(path string) *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[config] no config at %s, using defaults", path)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		log.Printf("[config] error parsing %s: %v, using defaults", path, err)
		cfg = DefaultConfig()
	} else {
		log.Printf("[config] loaded from %s", path)
	}

	cfg.applyEnvOverrides()
	return cfg
}

// applyEnvOverrides reads environment variables and overrides config
// values. Supported: SANBOT_TRANSPORT, SANBOT_HEAD_PORT,
// SANBOT_BOTTOM_PORT, SANBOT_BAUD, SANBOT_RETRIES, SANBOT_UNSAFE,
// SANBOT_HEARTBEAT_MS.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SANBOT_TRANSPORT"); v != "" {
		c.Transport.Type = v
	}
	if v := os.Getenv("SANBOT_HEAD_PORT"); v != "" {
		c.Transport.HeadPort = v
	}
	if v := os.Getenv("SANBOT_BOTTOM_PORT"); v != "" {
		c.Transport.BottomPort = v
	}
	if v := os.Getenv("SANBOT_BAUD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Transport.BaudRate = n
		}
	}
	if v := os.Getenv("SANBOT_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retries = n
		}
	}
	if v := os.Getenv("SANBOT_UNSAFE"); v != "" {
		c.Safety.Unsafe = v == "1" || v == "true" || v == "yes"
	}
	if v := os.Getenv("SANBOT_HEARTBEAT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Heartbeat.IntervalMs = n
		}
	}
}

func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutMs) * time.Millisecond
}

func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutMs) * time.Millisecond
}

func (c *Config) HeartbeatInterval() time.Duration {
	return time.Duration(c.Heartbeat.IntervalMs) * time.Millisecond
}
