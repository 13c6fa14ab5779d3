// Package search implements the five retrieval strategies — vector, FTS,
// AST, path, and dependency — each returning a common Result shape over the
// store described in internal/store.
package search

import "github.com/ctxengine/ctx/internal/store"

// Result is one ranked hit, stable across every strategy and the fusion
// stage that merges them.
type Result struct {
	ChunkID   int64
	FilePath  string
	LineStart int
	LineEnd   int
	Name      *string
	Type      string
	Text      string
	Exported  bool
	Language  string
	Score     float64
}

// Filters narrows vector/FTS results after the underlying query runs.
type Filters struct {
	Language string
}

// FromChunk converts a stored chunk into a ranked Result at the given score.
// Exported so callers outside the five strategies (e.g. internal/core's
// DependencyPath) can build Results from chunks they resolve themselves.
func FromChunk(c *store.Chunk, score float64) Result {
	return Result{
		ChunkID:   c.ID,
		FilePath:  c.FilePath,
		LineStart: c.LineStart,
		LineEnd:   c.LineEnd,
		Name:      c.Name,
		Type:      c.Type,
		Text:      c.Text,
		Exported:  c.Exported,
		Language:  c.Language,
		Score:     score,
	}
}
