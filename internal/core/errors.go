package core

import (
	"errors"
	"fmt"

	"github.com/ctxengine/ctx/internal/embed"
	"github.com/ctxengine/ctx/internal/store"
)

// ErrorKind classifies a core error so the CLI can pick an exit code and a
// user-facing message without string-matching.
type ErrorKind string

const (
	KindNotInitialized    ErrorKind = "not_initialized"
	KindConfigInvalid     ErrorKind = "config_invalid"
	KindDimensionMismatch ErrorKind = "dimension_mismatch"
	KindEmbedderMismatch  ErrorKind = "embedder_mismatch"
	KindParseFailed       ErrorKind = "parse_failed"
	KindEmbedderFailed    ErrorKind = "embedder_failed"
	KindDbCorrupted       ErrorKind = "db_corrupted"
	KindDbWriteFailed     ErrorKind = "db_write_failed"
	KindSearchFailed      ErrorKind = "search_failed"
	KindWatcherFailed     ErrorKind = "watcher_failed"
)

// Error is the typed error every core operation returns on failure. Kind
// drives the CLI's exit code (§7); Err carries the underlying cause.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Kind, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// ErrNotInitialized is returned by any operation that requires an existing
// project (.ctx/index.db) when none is found.
var ErrNotInitialized = errors.New("project not initialized; run `ctx init` first")

func wrap(kind ErrorKind, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	return &Error{Kind: kind, Err: err}
}

// classifyStoreErr maps a store/indexpipeline error onto the closest §7 kind.
func classifyStoreErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, store.ErrDimensionMismatch):
		return wrap(KindDimensionMismatch, err)
	case errors.Is(err, store.ErrEmbedderMismatch):
		return wrap(KindEmbedderMismatch, err)
	case errors.Is(err, embed.ErrEmbedderFailed):
		return wrap(KindEmbedderFailed, err)
	default:
		return wrap(KindDbWriteFailed, err)
	}
}

func classifyConfigErr(err error) error {
	return wrap(KindConfigInvalid, err)
}
