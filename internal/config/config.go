// Package config defines the project configuration persisted at .ctx/config.json
// and its defaulting rules.
package config

// Config is the complete project configuration. It is stored as pretty-printed
// JSON at .ctx/config.json with environment variable overrides applied on load.
type Config struct {
	Embedder EmbedderConfig `json:"embedder" mapstructure:"embedder"`
	Paths    PathsConfig    `json:"paths" mapstructure:"paths"`
	Search   SearchConfig   `json:"search" mapstructure:"search"`
	Watch    WatchConfig    `json:"watch" mapstructure:"watch"`
	LLM      LLMConfig      `json:"llm" mapstructure:"llm"`
}

// EmbedderConfig selects and parameterizes the vector embedder.
type EmbedderConfig struct {
	Provider   string `json:"provider" mapstructure:"provider"` // "local", "openai", or "voyage"
	Model      string `json:"model" mapstructure:"model"`
	Dimensions int    `json:"dimensions" mapstructure:"dimensions"`
}

// PathsConfig defines which files discovery considers and which it skips,
// on top of the built-in ignore list and any .gitignore/.ctxignore entries.
type PathsConfig struct {
	Code   []string `json:"code" mapstructure:"code"`
	Docs   []string `json:"docs" mapstructure:"docs"`
	Ignore []string `json:"ignore" mapstructure:"ignore"`
}

// SearchConfig controls default query behavior.
type SearchConfig struct {
	DefaultLimit int                `json:"defaultLimit" mapstructure:"defaultLimit"`
	Strategies   []string           `json:"strategies" mapstructure:"strategies"` // subset of vector, fts, ast, path, dependency
	Weights      map[string]float64 `json:"weights" mapstructure:"weights"`       // base per-strategy weight before classifier multipliers
}

// WatchConfig controls the filesystem watch loop.
type WatchConfig struct {
	DebounceMs int      `json:"debounceMs" mapstructure:"debounceMs"`
	Ignored    []string `json:"ignored" mapstructure:"ignored"`
}

// LLMConfig selects the external chat model used for natural-language query
// steering. The adapter itself lives outside the core; this struct only
// records the caller's choice.
type LLMConfig struct {
	Provider string `json:"provider" mapstructure:"provider"` // "null", "gemini", "openai", or "anthropic"
	Model    string `json:"model" mapstructure:"model"`
}

// Default returns a configuration with sensible defaults for a freshly
// initialized project.
func Default() *Config {
	return &Config{
		Embedder: EmbedderConfig{
			Provider:   "local",
			Model:      "BAAI/bge-small-en-v1.5",
			Dimensions: 384,
		},
		Paths: PathsConfig{
			Code: []string{
				"**/*.go", "**/*.ts", "**/*.tsx", "**/*.js", "**/*.jsx",
				"**/*.py", "**/*.rs", "**/*.c", "**/*.cpp", "**/*.cc",
				"**/*.h", "**/*.hpp", "**/*.php", "**/*.rb", "**/*.java",
			},
			Docs: []string{"**/*.md", "**/*.rst"},
			Ignore: []string{
				"node_modules/**", "vendor/**", ".git/**", ".ctx/**",
				"dist/**", "build/**", "target/**", "__pycache__/**",
			},
		},
		Search: SearchConfig{
			DefaultLimit: 20,
			Strategies:   []string{"fts", "ast", "path"},
			Weights: map[string]float64{
				"vector":     1.0,
				"fts":        1.0,
				"ast":        1.0,
				"path":       1.0,
				"dependency": 1.0,
			},
		},
		Watch: WatchConfig{
			DebounceMs: 500,
			Ignored: []string{
				"node_modules/**", "vendor/**", ".git/**", ".ctx/**",
				"dist/**", "build/**", "target/**", "__pycache__/**",
			},
		},
		LLM: LLMConfig{
			Provider: "null",
		},
	}
}
