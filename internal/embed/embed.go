// Package embed defines the embedder capability the indexer and search
// strategies depend on, without committing to any concrete provider.
package embed

import (
	"context"
	"errors"
)

// ErrEmbedderFailed is returned when a provider exhausts its retry budget.
var ErrEmbedderFailed = errors.New("embed: request failed after retries")

// ProgressFunc reports (done, total) after each embedding batch.
type ProgressFunc func(done, total int)

// Embedder turns text into L2-normalized vectors of a fixed dimension.
type Embedder interface {
	Name() string
	Dimensions() int
	// Embed vectorizes texts for indexing, in input order, reporting
	// progress after each internal batch.
	Embed(ctx context.Context, texts []string, progress ProgressFunc) ([][]float32, error)
	// EmbedSingle vectorizes one query string.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)
}

// Factory constructs an Embedder from configuration. Concrete providers
// (ONNX-backed local models, OpenAI, Voyage) live outside this module's
// scope; the core only ever holds a Factory result behind this interface.
type Factory func(provider, model string, dimensions int) (Embedder, error)
