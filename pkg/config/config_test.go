package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	old, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(old)

	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Identity)
	assert.Equal(t, "general", cfg.ActiveCategory)
	require.Len(t, cfg.Backends, 2)
	assert.Equal(t, "openai", cfg.Backends[0].Kind)
	assert.Equal(t, "ollama", cfg.Backends[1].Kind)
	assert.NotEmpty(t, cfg.Safety.Protected)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	old, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(old)

	require.NoError(t, os.MkdirAll(".selfai", 0755))
	cfgYAML := `
identity: "You are TestAI."
active_category: research
backends:
  - name: primary
    kind: openai
    endpoint: http://localhost:9999/v1/chat/completions
    model: test-model
    api_key_env: TEST_KEY
    max_tokens: 512
    timeout_seconds: 10
`
	require.NoError(t, os.WriteFile(filepath.Join(".selfai", "config.yaml"), []byte(cfgYAML), 0644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "You are TestAI.", cfg.Identity)
	assert.Equal(t, "research", cfg.ActiveCategory)
	require.Len(t, cfg.Backends, 1)
	assert.Equal(t, "primary", cfg.Backends[0].Name)
	assert.Equal(t, 512, cfg.Backends[0].MaxTokens)
}

func TestValidateRejectsUnknownBackendKind(t *testing.T) {
	cfg := &Config{
		Backends: []BackendConfig{{Name: "x", Kind: "carrier-pigeon", Model: "m"}},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}

func TestFindPersona(t *testing.T) {
	personas := []Persona{
		{Name: "researcher", Instructions: "Dig deep."},
	}
	assert.Equal(t, "researcher", FindPersona(personas, "researcher").Name)
	assert.Equal(t, DefaultPersona.Name, FindPersona(personas, "nope").Name)
	assert.Equal(t, DefaultPersona.Name, FindPersona(nil, "").Name)
}
