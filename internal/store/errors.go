// Package store implements the single-file embedded database that backs the
// indexing and search core: file/chunk metadata, a vector KNN table, an FTS5
// index, and a dependency-edge graph, all inside one SQLite database.
package store

import "errors"

var (
	// ErrDimensionMismatch is returned by Open when the caller's requested
	// vector dimension disagrees with the dimension recorded in meta (or,
	// for legacy databases, the dimension baked into the vec0 DDL).
	ErrDimensionMismatch = errors.New("store: vector dimension mismatch")

	// ErrEmbedderMismatch is returned when the configured embedder
	// descriptor disagrees with meta.index_embedder. Open does not read
	// meta.index_embedder; the check is made by the indexer before it writes.
	ErrEmbedderMismatch = errors.New("store: index embedder mismatch")

	// ErrEmbedderUnset is returned when a non-empty index has no recorded
	// meta.index_embedder: the configured embedder can only be adopted for
	// an empty index, since doing so otherwise risks mixing vector spaces.
	ErrEmbedderUnset = errors.New("store: index embedder unset on non-empty index")

	// ErrNotFound is returned by lookups that find no matching row.
	ErrNotFound = errors.New("store: not found")
)
