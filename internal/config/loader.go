package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const configFileName = "config.json"

// Loader provides configuration loading and saving for a project root.
type Loader interface {
	// Load reads .ctx/config.json (merging onto defaults for any subtree the
	// file omits), applies CTX_* environment overrides, validates, and
	// returns the result. A missing config file is not an error.
	Load() (*Config, error)
	// Save writes cfg to .ctx/config.json, preserving any unknown top-level
	// keys that were present when the file was last read.
	Save(cfg *Config) error
}

type loader struct {
	rootDir string
	extra   map[string]json.RawMessage
}

// NewLoader creates a configuration loader rooted at rootDir (the project
// root; the config file lives at rootDir/.ctx/config.json).
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

func (l *loader) configPath() string {
	return filepath.Join(l.rootDir, ".ctx", configFileName)
}

// Load reads the config file onto defaults, applies CTX_* environment
// overrides, validates, and returns the result. A missing config file is not
// an error. The merge, defaulting, and env-binding are delegated to viper;
// a narrow raw read alongside it captures any unknown top-level keys so Save
// can round-trip them (viper's own Unmarshal silently drops what the target
// struct has no field for).
func (l *loader) Load() (*Config, error) {
	l.extra = nil
	if raw, err := os.ReadFile(l.configPath()); err == nil {
		var fileTree map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fileTree); err != nil {
			return nil, fmt.Errorf("parse config.json: %w", err)
		}
		l.extra = fileTree
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config.json: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(l.rootDir, ".ctx"))

	setDefaults(v, Default())

	v.SetEnvPrefix("CTX")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, envVar := range map[string]string{
		"embedder.provider":   "CTX_EMBEDDER_PROVIDER",
		"embedder.model":      "CTX_EMBEDDER_MODEL",
		"embedder.dimensions": "CTX_EMBEDDER_DIMENSIONS",
		"search.defaultLimit": "CTX_SEARCH_DEFAULT_LIMIT",
		"watch.debounceMs":    "CTX_WATCH_DEBOUNCE_MS",
		"llm.provider":        "CTX_LLM_PROVIDER",
	} {
		if err := v.BindEnv(key, envVar); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", envVar, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("parse config.json: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every field of defaults as a viper default so that a
// config file omitting a subtree, or even a single field within one, falls
// back to the built-in value rather than the zero value.
func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("embedder.provider", defaults.Embedder.Provider)
	v.SetDefault("embedder.model", defaults.Embedder.Model)
	v.SetDefault("embedder.dimensions", defaults.Embedder.Dimensions)

	v.SetDefault("paths.code", defaults.Paths.Code)
	v.SetDefault("paths.docs", defaults.Paths.Docs)
	v.SetDefault("paths.ignore", defaults.Paths.Ignore)

	v.SetDefault("search.defaultLimit", defaults.Search.DefaultLimit)
	v.SetDefault("search.strategies", defaults.Search.Strategies)
	v.SetDefault("search.weights", defaults.Search.Weights)

	v.SetDefault("watch.debounceMs", defaults.Watch.DebounceMs)
	v.SetDefault("watch.ignored", defaults.Watch.Ignored)

	v.SetDefault("llm.provider", defaults.LLM.Provider)
	v.SetDefault("llm.model", defaults.LLM.Model)
}

// Save writes cfg as pretty-printed JSON, re-attaching unknown top-level
// keys from the last Load so hand-added fields round-trip untouched.
func (l *loader) Save(cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(l.configPath()), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	tree := map[string]json.RawMessage{}
	for k, v := range l.extra {
		tree[k] = v
	}
	for _, kv := range []struct {
		key string
		val any
	}{
		{"embedder", cfg.Embedder},
		{"paths", cfg.Paths},
		{"search", cfg.Search},
		{"watch", cfg.Watch},
		{"llm", cfg.LLM},
	} {
		b, err := json.Marshal(kv.val)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", kv.key, err)
		}
		tree[kv.key] = b
	}

	out, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	out = append(out, '\n')

	return os.WriteFile(l.configPath(), out, 0o644)
}

// LoadConfig is a convenience function that loads configuration for the
// current working directory.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}

// LoadConfigFromDir loads configuration rooted at a specific directory.
func LoadConfigFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}
