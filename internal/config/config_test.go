package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_ReturnsValidConfiguration(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)

	assert.Equal(t, "local", cfg.Embedder.Provider)
	assert.Equal(t, "BAAI/bge-small-en-v1.5", cfg.Embedder.Model)
	assert.Equal(t, 384, cfg.Embedder.Dimensions)

	assert.NotEmpty(t, cfg.Paths.Code)
	assert.NotEmpty(t, cfg.Paths.Docs)
	assert.NotEmpty(t, cfg.Paths.Ignore)

	assert.Equal(t, 20, cfg.Search.DefaultLimit)
	assert.ElementsMatch(t, []string{"fts", "ast", "path"}, cfg.Search.Strategies)
	assert.Equal(t, "null", cfg.LLM.Provider)

	assert.NoError(t, Validate(cfg))
}

func TestLoader_LoadUsesDefaultsWhenNoConfigFile(t *testing.T) {
	tempDir := t.TempDir()

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	expected := Default()
	assert.Equal(t, expected.Embedder, cfg.Embedder)
	assert.Equal(t, expected.Search, cfg.Search)
}

func TestLoader_LoadMergesFileOntoDefaults(t *testing.T) {
	tempDir := t.TempDir()
	stateDir := filepath.Join(tempDir, ".ctx")
	require.NoError(t, os.MkdirAll(stateDir, 0o755))

	content := `{
  "embedder": {"provider": "openai", "model": "text-embedding-3-small", "dimensions": 1536}
}`
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "config.json"), []byte(content), 0o644))

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Embedder.Provider)
	assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
	assert.Equal(t, 1536, cfg.Embedder.Dimensions)

	// Unspecified subtrees keep their defaults.
	assert.Equal(t, Default().Search, cfg.Search)
	assert.Equal(t, Default().Watch, cfg.Watch)
}

func TestLoader_SaveRoundTripsAndPreservesUnknownKeys(t *testing.T) {
	tempDir := t.TempDir()
	stateDir := filepath.Join(tempDir, ".ctx")
	require.NoError(t, os.MkdirAll(stateDir, 0o755))

	content := `{"embedder": {"provider": "local", "model": "x", "dimensions": 384}, "future": {"flag": true}}`
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "config.json"), []byte(content), 0o644))

	loader := NewLoader(tempDir)
	cfg, err := loader.Load()
	require.NoError(t, err)

	cfg.Search.DefaultLimit = 50
	require.NoError(t, loader.Save(cfg))

	raw, err := os.ReadFile(filepath.Join(stateDir, "config.json"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"future"`)
	assert.Contains(t, string(raw), `"flag": true`)

	reloaded, err := NewLoader(tempDir).Load()
	require.NoError(t, err)
	assert.Equal(t, 50, reloaded.Search.DefaultLimit)
}

func TestLoader_EnvironmentOverridesConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	stateDir := filepath.Join(tempDir, ".ctx")
	require.NoError(t, os.MkdirAll(stateDir, 0o755))

	content := `{"embedder": {"provider": "local", "model": "file-model", "dimensions": 384}}`
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "config.json"), []byte(content), 0o644))

	t.Setenv("CTX_EMBEDDER_PROVIDER", "openai")
	t.Setenv("CTX_EMBEDDER_MODEL", "env-model")
	t.Setenv("CTX_EMBEDDER_DIMENSIONS", "1536")

	cfg, err := NewLoader(tempDir).Load()
	require.NoError(t, err)

	assert.Equal(t, "openai", cfg.Embedder.Provider)
	assert.Equal(t, "env-model", cfg.Embedder.Model)
	assert.Equal(t, 1536, cfg.Embedder.Dimensions)
}

func TestLoader_LoadReturnsErrorForMalformedJSON(t *testing.T) {
	tempDir := t.TempDir()
	stateDir := filepath.Join(tempDir, ".ctx")
	require.NoError(t, os.MkdirAll(stateDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "config.json"), []byte("{not json"), 0o644))

	cfg, err := NewLoader(tempDir).Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoader_LoadReturnsErrorForInvalidValues(t *testing.T) {
	tempDir := t.TempDir()
	stateDir := filepath.Join(tempDir, ".ctx")
	require.NoError(t, os.MkdirAll(stateDir, 0o755))

	content := `{"embedder": {"provider": "not-a-provider", "model": "x", "dimensions": -1}}`
	require.NoError(t, os.WriteFile(filepath.Join(stateDir, "config.json"), []byte(content), 0o644))

	cfg, err := NewLoader(tempDir).Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestValidate_AcceptsDefault(t *testing.T) {
	assert.NoError(t, Validate(Default()))
}

func TestValidate_RejectsInvalidProvider(t *testing.T) {
	cfg := Default()
	cfg.Embedder.Provider = "unsupported"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidProvider)
}

func TestValidate_RejectsNonPositiveDimensions(t *testing.T) {
	cfg := Default()
	cfg.Embedder.Dimensions = 0

	err := Validate(cfg)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDimensions)
}

func TestValidate_RejectsEmptyModel(t *testing.T) {
	cfg := Default()
	cfg.Embedder.Model = "  "

	err := Validate(cfg)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyModel)
}

func TestValidate_RejectsEmptyStrategies(t *testing.T) {
	cfg := Default()
	cfg.Search.Strategies = nil

	err := Validate(cfg)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyStrategy)
}

func TestValidate_RejectsUnknownStrategy(t *testing.T) {
	cfg := Default()
	cfg.Search.Strategies = []string{"fts", "telepathy"}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "telepathy")
}

func TestValidate_RejectsNonPositiveDebounce(t *testing.T) {
	cfg := Default()
	cfg.Watch.DebounceMs = 0

	err := Validate(cfg)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidDebounce)
}

func TestValidate_RejectsInvalidLLMProvider(t *testing.T) {
	cfg := Default()
	cfg.LLM.Provider = "skynet"

	err := Validate(cfg)
	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLLMProvider)
}

func TestValidate_ReturnsMultipleErrorsForMultipleInvalidFields(t *testing.T) {
	cfg := &Config{
		Embedder: EmbedderConfig{Provider: "invalid", Model: "", Dimensions: -1},
		Search:   SearchConfig{DefaultLimit: -1, Strategies: nil},
		Watch:    WatchConfig{DebounceMs: -1},
		LLM:      LLMConfig{Provider: "invalid"},
	}

	err := Validate(cfg)
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "provider")
	assert.Contains(t, msg, "model")
	assert.Contains(t, msg, "dimensions")
	assert.Contains(t, msg, "strategies")
	assert.Contains(t, msg, "debounceMs")
}
