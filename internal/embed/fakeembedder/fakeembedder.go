// Package fakeembedder provides a deterministic, dependency-free Embedder
// derived from SHA-256, used as the "local" provider's default wiring and
// throughout the test suite.
package fakeembedder

import (
	"context"
	"crypto/sha256"
	"math"

	"github.com/ctxengine/ctx/internal/embed"
)

// Embedder hashes each input text into a deterministic unit vector. It
// satisfies embed.Embedder without any external model or network access.
type Embedder struct {
	dimensions int
}

// New returns a fake embedder producing vectors of the given dimension.
func New(dimensions int) *Embedder {
	return &Embedder{dimensions: dimensions}
}

func (e *Embedder) Name() string { return "local" }

func (e *Embedder) Dimensions() int { return e.dimensions }

func (e *Embedder) Embed(ctx context.Context, texts []string, progress embed.ProgressFunc) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		out[i] = vectorFor(t, e.dimensions)
		if progress != nil {
			progress(i+1, len(texts))
		}
	}
	return out, nil
}

func (e *Embedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return vectorFor(text, e.dimensions), nil
}

// vectorFor expands a SHA-256 digest of text into dimensions float32s via a
// counter-mode stream, then L2-normalizes the result.
func vectorFor(text string, dimensions int) []float32 {
	v := make([]float32, dimensions)
	block := 0
	digest := sha256.Sum256([]byte{})
	bi := len(digest) // force first refill
	for i := 0; i < dimensions; i++ {
		if bi >= len(digest) {
			digest = sha256.Sum256(append([]byte(text), byte(block)))
			block++
			bi = 0
		}
		// map a digest byte into [-1, 1]
		v[i] = float32(digest[bi])/127.5 - 1.0
		bi++
	}
	return normalize(v)
}

// Normalize scales v to unit L2 norm. A zero vector is returned unchanged.
func Normalize(v []float32) []float32 { return normalize(v) }

func normalize(v []float32) []float32 {
	var sumSq float64
	for _, x := range v {
		sumSq += float64(x) * float64(x)
	}
	if sumSq == 0 {
		return v
	}
	norm := math.Sqrt(sumSq)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
