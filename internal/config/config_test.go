package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Project.Root)
	assert.Equal(t, "gemini", cfg.AI.Provider)
	assert.Equal(t, 8192, cfg.AI.MaxTokens)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `project:
  root: /work
ai:
  model: gemini-2.0-flash
  api_key: from-file
  max_tokens: 2048
prompts:
  tersify: Custom tersify template.
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/work", cfg.Project.Root)
	assert.Equal(t, "gemini-2.0-flash", cfg.AI.Model)
	assert.Equal(t, "from-file", cfg.AI.APIKey)
	assert.Equal(t, 2048, cfg.AI.MaxTokens)
	assert.Equal(t, "Custom tersify template.", cfg.Prompts.Tersify)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ai:\n  api_key: from-file\n"), 0644))

	t.Setenv("PROMPTPRESS_API_KEY", "from-env")
	t.Setenv("PROMPTPRESS_MAX_TOKENS", "512")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.AI.APIKey)
	assert.Equal(t, 512, cfg.AI.MaxTokens)
}
