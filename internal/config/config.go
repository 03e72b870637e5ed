// Package config loads the gateway's server configuration: the YAML
// file described by the routing/server schema, overlaid with A2C_
// prefixed environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/nikketryhard/a2c/pkg/routing"
)

// ServerConfig holds the process's bind address and logging verbosity.
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

// ProviderConfig holds one provider's YAML settings. cmd/server applies
// only BaseURL; APIKeyEnv is parsed but not used, since each built-in
// provider reads its credential from a fixed environment variable
// (see pkg/upstream) on every call. No credential value is held here.
type ProviderConfig struct {
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

// Config is the full gateway configuration: server settings, the
// routing ruleset definition, and per-provider base URLs.
type Config struct {
	Server    ServerConfig              `yaml:"server"`
	Routing   routing.Config            `yaml:"routing"`
	Providers map[string]ProviderConfig `yaml:"providers"`
}

// Default returns the configuration used when no file is supplied:
// loopback bind, info logging, and the built-in routing ruleset.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080, LogLevel: "INFO"},
		Routing: *routing.DefaultConfig(),
	}
}

// Load reads path (a YAML file) and overlays A2C_-prefixed environment
// variables on top of it. A missing path yields Default(). Recognized
// overrides: A2C_HOST, A2C_PORT, A2C_LOG_LEVEL, A2C_ROUTING_DEFAULT_PROVIDER,
// A2C_ROUTING_LONG_CONTEXT_THRESHOLD.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through with defaults
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if len(data) > 0 {
				if err := yaml.Unmarshal(data, cfg); err != nil {
					return nil, fmt.Errorf("parse config file: %w", err)
				}
			}
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Routing.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("A2C_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("A2C_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = n
		}
	}
	if v := os.Getenv("A2C_LOG_LEVEL"); v != "" {
		cfg.Server.LogLevel = v
	}
	if v := os.Getenv("A2C_ROUTING_DEFAULT_PROVIDER"); v != "" {
		cfg.Routing.DefaultProvider = v
	}
	if v := os.Getenv("A2C_ROUTING_LONG_CONTEXT_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Routing.LongContextThreshold = n
		}
	}
}
