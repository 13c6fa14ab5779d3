package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidProvider indicates an unsupported embedder provider.
	ErrInvalidProvider = errors.New("invalid embedder provider")

	// ErrInvalidDimensions indicates invalid embedding vector dimensions.
	ErrInvalidDimensions = errors.New("invalid embedder dimensions")

	// ErrEmptyModel indicates a missing embedder model name.
	ErrEmptyModel = errors.New("empty embedder model")

	// ErrInvalidLimit indicates a non-positive default search limit.
	ErrInvalidLimit = errors.New("invalid search default limit")

	// ErrEmptyStrategy indicates an empty search strategy list.
	ErrEmptyStrategy = errors.New("empty search strategies")

	// ErrInvalidDebounce indicates a non-positive watch debounce.
	ErrInvalidDebounce = errors.New("invalid watch debounce")

	// ErrInvalidLLMProvider indicates an unsupported LLM provider.
	ErrInvalidLLMProvider = errors.New("invalid llm provider")
)

var validStrategies = map[string]bool{
	"vector": true, "fts": true, "ast": true, "path": true, "dependency": true,
}

var validEmbedderProviders = map[string]bool{
	"local": true, "openai": true, "voyage": true,
}

var validLLMProviders = map[string]bool{
	"null": true, "gemini": true, "openai": true, "anthropic": true,
}

// Validate checks that the configuration is complete and internally
// consistent.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateEmbedder(&cfg.Embedder); err != nil {
		errs = append(errs, err)
	}
	if err := validateSearch(&cfg.Search); err != nil {
		errs = append(errs, err)
	}
	if err := validateWatch(&cfg.Watch); err != nil {
		errs = append(errs, err)
	}
	if err := validateLLM(&cfg.LLM); err != nil {
		errs = append(errs, err)
	}

	return joinErrors(errs)
}

func validateEmbedder(cfg *EmbedderConfig) error {
	var errs []error

	provider := strings.ToLower(cfg.Provider)
	if !validEmbedderProviders[provider] {
		errs = append(errs, fmt.Errorf("%w: must be local, openai, or voyage, got %q", ErrInvalidProvider, cfg.Provider))
	}
	if strings.TrimSpace(cfg.Model) == "" {
		errs = append(errs, fmt.Errorf("%w: model is required", ErrEmptyModel))
	}
	if cfg.Dimensions <= 0 {
		errs = append(errs, fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidDimensions, cfg.Dimensions))
	}

	return joinErrors(errs)
}

func validateSearch(cfg *SearchConfig) error {
	var errs []error

	if cfg.DefaultLimit <= 0 {
		errs = append(errs, fmt.Errorf("%w: defaultLimit must be positive, got %d", ErrInvalidLimit, cfg.DefaultLimit))
	}
	if len(cfg.Strategies) == 0 {
		errs = append(errs, fmt.Errorf("%w: at least one strategy is required", ErrEmptyStrategy))
	}
	for _, s := range cfg.Strategies {
		if !validStrategies[s] {
			errs = append(errs, fmt.Errorf("unknown search strategy %q (valid: vector, fts, ast, path, dependency)", s))
		}
	}

	return joinErrors(errs)
}

func validateWatch(cfg *WatchConfig) error {
	if cfg.DebounceMs <= 0 {
		return fmt.Errorf("%w: debounceMs must be positive, got %d", ErrInvalidDebounce, cfg.DebounceMs)
	}
	return nil
}

func validateLLM(cfg *LLMConfig) error {
	provider := strings.ToLower(cfg.Provider)
	if !validLLMProviders[provider] {
		return fmt.Errorf("%w: must be null, gemini, openai, or anthropic, got %q", ErrInvalidLLMProvider, cfg.Provider)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
