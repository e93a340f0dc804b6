package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StefanoGysin/voxy/internal/config"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voxy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("VOXY_TEST_KEY", "sk-secret")

	path := writeConfig(t, `
storage:
  backend: memory
models:
  router: deepseek-chat
  vision: gpt-4o-mini
  deepseek_api_key: ${VOXY_TEST_KEY}
supervisor:
  max_iterations: 3
  request_timeout: 30s
weather:
  timeout: 5s
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-secret", cfg.Models.DeepSeekAPIKey)
	assert.Equal(t, 3, cfg.Supervisor.MaxIterations)
	assert.Equal(t, 30*time.Second, cfg.Supervisor.RequestTimeout)
	assert.Equal(t, 5*time.Second, cfg.Weather.Timeout)

	// Unset fields pick up defaults.
	assert.Equal(t, "https://wttr.in", cfg.Weather.BaseURL)
	assert.Equal(t, "info", cfg.Logging.Level)
	// Conversational falls back to the router model.
	assert.Equal(t, "deepseek-chat", cfg.Models.Conversational)
}

func TestLoadUnsetEnvVarExpandsEmpty(t *testing.T) {
	path := writeConfig(t, `
models:
  router: deepseek-chat
  vision: gpt-4o-mini
  openai_api_key: ${VOXY_DEFINITELY_UNSET_VAR}
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.Models.OpenAIAPIKey)
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: cassandra
models:
  router: deepseek-chat
  vision: gpt-4o-mini
`)

	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")
}

func TestLoadRequiresBoltPath(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: bolt
models:
  router: deepseek-chat
  vision: gpt-4o-mini
`)

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoadRequiresModels(t *testing.T) {
	path := writeConfig(t, `
storage:
  backend: memory
`)

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, `
models:
  router: deepseek-chat
  vision: gpt-4o-mini
supervisor:
  request_timeout: soon
`)

	_, err := config.Load(path)
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.NotEmpty(t, cfg.Models.Router)
	assert.NotEmpty(t, cfg.Models.Vision)
	assert.Greater(t, cfg.Supervisor.MaxIterations, 0)
	assert.Greater(t, cfg.Supervisor.RequestTimeout, time.Duration(0))
	require.NoError(t, cfg.Validate())
}
