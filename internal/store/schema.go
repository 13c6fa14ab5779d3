package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
)

const schemaVersion = "1"

var vecExtensionOnce sync.Once

// Store is the embedded database described in §4.1 of the specification: a
// single SQLite file carrying file/chunk metadata, an FTS5 index, a vec0
// vector table, and a dependency-edge table. Transactions are serialized
// through writeMu (SQLite itself is single-writer; this avoids SQLITE_BUSY
// under WAL when two goroutines race to begin a write). Single-statement
// write helpers called directly on Store do not take writeMu.
type Store struct {
	db        *sql.DB
	path      string
	dim       int
	writeMu   sync.Mutex
}

// Open opens (creating if absent) the database at path. If dim is zero, the
// store adopts whatever dimension is already recorded (or fails if this is a
// fresh database with no dimension supplied). If dim is non-zero it must
// match a previously recorded dimension, or Open fails with
// ErrDimensionMismatch.
func Open(path string, dim int) (*Store, error) {
	vecExtensionOnce.Do(sqlite_vec.Auto)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite + cgo driver: keep one connection, serialize ourselves.

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: enable foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}

	existingDim, hasMeta, err := readStoredDimension(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	switch {
	case hasMeta && dim != 0 && existingDim != dim:
		db.Close()
		return nil, fmt.Errorf("%w: store built with %d dims, requested %d", ErrDimensionMismatch, existingDim, dim)
	case hasMeta:
		s.dim = existingDim
	case dim != 0:
		s.dim = dim
	default:
		db.Close()
		return nil, fmt.Errorf("store: no dimension recorded and none supplied")
	}

	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// readStoredDimension inspects meta.vector_dimensions, falling back to
// parsing the chunk_vectors virtual-table DDL for legacy databases that
// predate the meta row.
func readStoredDimension(db *sql.DB) (dim int, ok bool, err error) {
	var tableExists int
	if err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='meta'`).Scan(&tableExists); err != nil {
		return 0, false, fmt.Errorf("store: check meta table: %w", err)
	}
	if tableExists == 0 {
		return 0, false, nil
	}

	var raw string
	err = db.QueryRow(`SELECT value FROM meta WHERE key = 'vector_dimensions'`).Scan(&raw)
	switch {
	case err == nil:
		n, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return 0, false, fmt.Errorf("store: parse vector_dimensions: %w", convErr)
		}
		return n, true, nil
	case err == sql.ErrNoRows:
		// fall through to legacy DDL recovery below
	default:
		return 0, false, fmt.Errorf("store: read vector_dimensions: %w", err)
	}

	var ddl string
	err = db.QueryRow(`SELECT sql FROM sqlite_master WHERE type='table' AND name='chunk_vectors'`).Scan(&ddl)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("store: read chunk_vectors DDL: %w", err)
	}
	m := regexp.MustCompile(`float\[(\d+)\]`).FindStringSubmatch(ddl)
	if m == nil {
		return 0, false, fmt.Errorf("store: could not recover vector dimension from legacy schema")
	}
	n, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0, false, fmt.Errorf("store: parse legacy dimension: %w", convErr)
	}
	return n, true, nil
}

func (s *Store) ensureSchema() error {
	var tableExists int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='files'`).Scan(&tableExists); err != nil {
		return fmt.Errorf("store: check files table: %w", err)
	}
	if tableExists != 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin schema tx: %w", err)
	}
	defer tx.Rollback()

	ddls := []string{
		`CREATE TABLE meta (key TEXT PRIMARY KEY, value TEXT NOT NULL)`,
		`CREATE TABLE files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			language TEXT NOT NULL,
			hash TEXT NOT NULL,
			size INTEGER NOT NULL,
			last_indexed TEXT NOT NULL
		)`,
		`CREATE TABLE chunks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			file_id INTEGER NOT NULL REFERENCES files(id) ON DELETE CASCADE,
			chunk_key TEXT NOT NULL,
			line_start INTEGER NOT NULL,
			line_end INTEGER NOT NULL,
			type TEXT NOT NULL,
			name TEXT,
			parent TEXT,
			text TEXT NOT NULL,
			imports TEXT NOT NULL DEFAULT '[]',
			exported INTEGER NOT NULL DEFAULT 0,
			content_hash TEXT NOT NULL
		)`,
		`CREATE INDEX idx_chunks_file_id ON chunks(file_id)`,
		`CREATE INDEX idx_chunks_name ON chunks(name)`,
		`CREATE INDEX idx_chunks_type ON chunks(type)`,
		`CREATE TABLE dependencies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source_chunk_id INTEGER NOT NULL REFERENCES chunks(id) ON DELETE CASCADE,
			target_chunk_id INTEGER NOT NULL REFERENCES chunks(id) ON DELETE CASCADE,
			relation TEXT NOT NULL
		)`,
		`CREATE INDEX idx_deps_source ON dependencies(source_chunk_id)`,
		`CREATE INDEX idx_deps_target ON dependencies(target_chunk_id)`,
		`CREATE VIRTUAL TABLE chunks_fts USING fts5(
			name, parent, text,
			content='chunks', content_rowid='id'
		)`,
	}
	for _, ddl := range ddls {
		if _, err := tx.Exec(ddl); err != nil {
			return fmt.Errorf("store: create schema: %w", err)
		}
	}

	triggers := []string{
		`CREATE TRIGGER chunks_fts_insert AFTER INSERT ON chunks BEGIN
			INSERT INTO chunks_fts(rowid, name, parent, text) VALUES (new.id, new.name, new.parent, new.text);
		END`,
		`CREATE TRIGGER chunks_fts_delete AFTER DELETE ON chunks BEGIN
			INSERT INTO chunks_fts(chunks_fts, rowid, name, parent, text) VALUES ('delete', old.id, old.name, old.parent, old.text);
		END`,
		`CREATE TRIGGER chunks_fts_update AFTER UPDATE ON chunks BEGIN
			INSERT INTO chunks_fts(chunks_fts, rowid, name, parent, text) VALUES ('delete', old.id, old.name, old.parent, old.text);
			INSERT INTO chunks_fts(rowid, name, parent, text) VALUES (new.id, new.name, new.parent, new.text);
		END`,
	}
	for _, trig := range triggers {
		if _, err := tx.Exec(trig); err != nil {
			return fmt.Errorf("store: create fts trigger: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO meta(key, value) VALUES ('schema_version', ?), ('vector_dimensions', ?)`,
		schemaVersion, strconv.Itoa(s.dim)); err != nil {
		return fmt.Errorf("store: bootstrap meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit schema tx: %w", err)
	}

	// vec0 virtual tables cannot be created inside a transaction.
	vecDDL := fmt.Sprintf(`CREATE VIRTUAL TABLE chunk_vectors USING vec0(chunk_id INTEGER PRIMARY KEY, embedding float[%d])`, s.dim)
	if _, err := s.db.Exec(vecDDL); err != nil {
		return fmt.Errorf("store: create vector table: %w", err)
	}

	return nil
}

// Dimensions returns the vector dimension this store was opened/created
// with.
func (s *Store) Dimensions() int { return s.dim }

// SchemaVersion returns the recorded schema version.
func (s *Store) SchemaVersion() (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&v)
	if err != nil {
		return "", fmt.Errorf("store: read schema_version: %w", err)
	}
	return v, nil
}

// IndexEmbedder returns the recorded embedder descriptor, or nil if none has
// been set yet.
func (s *Store) IndexEmbedder() (*EmbedderDescriptor, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'index_embedder'`).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read index_embedder: %w", err)
	}
	var desc EmbedderDescriptor
	if err := json.Unmarshal([]byte(raw), &desc); err != nil {
		return nil, fmt.Errorf("store: parse index_embedder: %w", err)
	}
	return &desc, nil
}

// SetIndexEmbedder records the embedder descriptor the index was built with.
// Callers must only invoke this when IndexEmbedder returns nil and the
// store is empty (enforced by the façade, §4.1's "index embedder gate").
func (s *Store) SetIndexEmbedder(desc EmbedderDescriptor) error {
	b, err := json.Marshal(desc)
	if err != nil {
		return fmt.Errorf("store: marshal index_embedder: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO meta(key, value) VALUES ('index_embedder', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, string(b))
	if err != nil {
		return fmt.Errorf("store: write index_embedder: %w", err)
	}
	return nil
}

// Vacuum reclaims free space.
func (s *Store) Vacuum() error {
	_, err := s.db.Exec(`VACUUM`)
	return err
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
