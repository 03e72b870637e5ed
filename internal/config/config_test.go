package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingPathReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_ParsesYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  host: 0.0.0.0
  port: 9090
  log_level: DEBUG
routing:
  default_provider: anthropic
  long_context_threshold: 50000
  rules:
    - name: custom
      provider: anthropic
      priority: 10
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "anthropic", cfg.Routing.DefaultProvider)
	assert.Equal(t, 50000, cfg.Routing.LongContextThreshold)
	require.Len(t, cfg.Routing.Rules, 1)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  host: 0.0.0.0
  port: 9090
`), 0o644))

	t.Setenv("A2C_PORT", "7000")
	t.Setenv("A2C_ROUTING_DEFAULT_PROVIDER", "gemini")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.Routing.DefaultProvider)
}

func TestLoad_InvalidRoutingConfigRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
routing:
  default_provider: anthropic
  rules:
    - name: ""
      provider: anthropic
      priority: 1
`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
