// Package config loads volctl configuration from TOML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultLogLevel              = "info"
	DefaultRelayURL              = "ws://localhost:8080/ws"
	DefaultPollInterval          = "500ms"
	DefaultReconnectDelay        = "2s"
	DefaultPort                  = "8080"
	DefaultVolumeChangeRateLimit = 2

	EnvRelayURL = "VOLCTL_RELAY_URL"
	EnvPort     = "PORT"
)

// Config is the volctl configuration.
type Config struct {
	Log   LogConfig   `toml:"log"`
	Agent AgentConfig `toml:"agent"`
	Relay RelayConfig `toml:"relay"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// AgentConfig configures `volctl sync`.
type AgentConfig struct {
	RelayURL       string `toml:"relay_url"`
	PollInterval   string `toml:"poll_interval"`
	ReconnectDelay string `toml:"reconnect_delay"`
}

// RelayConfig configures the websocket relay.
type RelayConfig struct {
	Port                  string `toml:"port"`
	VolumeChangeRateLimit int    `toml:"volume_change_rate_limit"` // per client per second
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
		Agent: AgentConfig{
			RelayURL:       DefaultRelayURL,
			PollInterval:   DefaultPollInterval,
			ReconnectDelay: DefaultReconnectDelay,
		},
		Relay: RelayConfig{
			Port:                  DefaultPort,
			VolumeChangeRateLimit: DefaultVolumeChangeRateLimit,
		},
	}
}

// Path returns the default config file path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "volctl", "config.toml")
}

// Load reads the config file at path (or Path() when empty), applies
// environment overrides and validates the result. A missing file yields defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvRelayURL); v != "" {
		c.Agent.RelayURL = v
	}
	if v := os.Getenv(EnvPort); v != "" {
		c.Relay.Port = v
	}
}

// Validate checks the configuration for unusable values.
func (c *Config) Validate() error {
	if c.Agent.RelayURL == "" {
		return errors.New("agent.relay_url must not be empty")
	}
	if _, err := positiveDuration("agent.poll_interval", c.Agent.PollInterval); err != nil {
		return err
	}
	if _, err := positiveDuration("agent.reconnect_delay", c.Agent.ReconnectDelay); err != nil {
		return err
	}
	if c.Relay.VolumeChangeRateLimit <= 0 {
		return fmt.Errorf("relay.volume_change_rate_limit must be positive, got %d", c.Relay.VolumeChangeRateLimit)
	}
	return nil
}

// PollInterval returns the parsed agent poll interval.
func (c *Config) PollInterval() time.Duration {
	d, _ := time.ParseDuration(c.Agent.PollInterval)
	return d
}

// ReconnectDelay returns the parsed agent reconnect delay.
func (c *Config) ReconnectDelay() time.Duration {
	d, _ := time.ParseDuration(c.Agent.ReconnectDelay)
	return d
}

func positiveDuration(key, s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, s)
	}
	return d, nil
}
