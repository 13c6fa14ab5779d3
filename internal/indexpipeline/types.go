// Package indexpipeline runs the end-to-end indexing operation: bootstrap,
// discovery, change detection, parse+chunk+store, and optional embedding.
package indexpipeline

import (
	"time"

	"github.com/ctxengine/ctx/internal/embed"
)

// Options controls one Index invocation.
type Options struct {
	// SkipEmbedding runs the pipeline through chunk storage only, leaving
	// new chunks without vectors (still searchable via FTS/AST/path).
	SkipEmbedding bool
	// Progress, if non-nil, is called after each embedding batch so a
	// caller (the CLI's progress bar) can report completion.
	Progress embed.ProgressFunc
}

// Stats summarizes one Index run.
type Stats struct {
	FilesDiscovered int
	FilesAdded      int
	FilesModified   int
	FilesDeleted    int
	FilesUnchanged  int
	ChunksCreated   int
	VectorsCreated  int
	Duration        time.Duration
	ByLanguage      map[string]int
}
