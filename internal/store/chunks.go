package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
)

// InsertChunks inserts chunks for fileID in order, returning their assigned
// row ids in the same order.
func (s *Store) InsertChunks(fileID int64, inputs []ChunkInput) ([]int64, error) {
	var ids []int64
	err := s.Transaction(func(tx *Tx) error {
		var err error
		ids, err = tx.InsertChunks(fileID, inputs)
		return err
	})
	return ids, err
}

func (t *Tx) InsertChunks(fileID int64, inputs []ChunkInput) ([]int64, error) {
	ids := make([]int64, 0, len(inputs))
	for _, in := range inputs {
		importsJSON, err := json.Marshal(in.Imports)
		if err != nil {
			return nil, fmt.Errorf("store: marshal imports: %w", err)
		}
		exported := 0
		if in.Exported {
			exported = 1
		}
		res, err := t.tx.Exec(`INSERT INTO chunks(file_id, chunk_key, line_start, line_end, type, name, parent, text, imports, exported, content_hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			fileID, in.ChunkKey, in.LineStart, in.LineEnd, in.Type, in.Name, in.Parent, in.Text, string(importsJSON), exported, in.ContentHash)
		if err != nil {
			return nil, fmt.Errorf("store: insert chunk: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("store: chunk last insert id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

const chunkSelectCols = `c.id, c.file_id, f.path, f.language, c.chunk_key, c.line_start, c.line_end, c.type, c.name, c.parent, c.text, c.imports, c.exported, c.content_hash`

func scanChunk(row interface {
	Scan(dest ...any) error
}) (*Chunk, error) {
	var c Chunk
	var importsJSON string
	var exported int
	if err := row.Scan(&c.ID, &c.FileID, &c.FilePath, &c.Language, &c.ChunkKey, &c.LineStart, &c.LineEnd,
		&c.Type, &c.Name, &c.Parent, &c.Text, &importsJSON, &exported, &c.ContentHash); err != nil {
		return nil, err
	}
	c.Exported = exported != 0
	if importsJSON != "" {
		if err := json.Unmarshal([]byte(importsJSON), &c.Imports); err != nil {
			return nil, fmt.Errorf("store: unmarshal imports: %w", err)
		}
	}
	return &c, nil
}

// ChunksByFile returns every chunk owned by fileID, ordered by line_start.
func (s *Store) ChunksByFile(fileID int64) ([]*Chunk, error) {
	rows, err := s.db.Query(`SELECT `+chunkSelectCols+` FROM chunks c JOIN files f ON f.id = c.file_id
		WHERE c.file_id = ? ORDER BY c.line_start`, fileID)
	if err != nil {
		return nil, fmt.Errorf("store: chunks by file: %w", err)
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

// ChunksByIDs returns the chunks for the given ids, joined with their
// owning file's path and language. Order is not guaranteed to match ids;
// callers needing input order must re-sort.
func (s *Store) ChunksByIDs(ids []int64) ([]*Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := `SELECT ` + chunkSelectCols + ` FROM chunks c JOIN files f ON f.id = c.file_id
		WHERE c.id IN (` + strings.Join(placeholders, ",") + `)`
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: chunks by ids: %w", err)
	}
	defer rows.Close()
	return scanChunkRows(rows)
}

func scanChunkRows(rows *sql.Rows) ([]*Chunk, error) {
	var out []*Chunk
	for rows.Next() {
		c, err := scanChunk(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan chunk: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteChunksByFile removes every chunk owned by fileID. Foreign keys
// cascade the delete into dependencies; FTS rows are removed by trigger.
// Vector rows are removed explicitly first since chunk_vectors is a vec0
// virtual table with no foreign-key support.
func (s *Store) DeleteChunksByFile(fileID int64) error {
	return s.Transaction(func(tx *Tx) error {
		return tx.DeleteChunksByFile(fileID)
	})
}

func (t *Tx) DeleteChunksByFile(fileID int64) error {
	rows, err := t.tx.Query(`SELECT id FROM chunks WHERE file_id = ?`, fileID)
	if err != nil {
		return fmt.Errorf("store: select chunks for delete: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("store: scan chunk id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	if err := t.DeleteVectors(ids); err != nil {
		return err
	}

	if _, err := t.tx.Exec(`DELETE FROM chunks WHERE file_id = ?`, fileID); err != nil {
		return fmt.Errorf("store: delete chunks: %w", err)
	}
	return nil
}

// SearchChunks dispatches an AST/symbol lookup (§4.8's AST strategy).
func (s *Store) SearchChunks(filter SearchChunksFilter, limit int) ([]*Chunk, error) {
	var where []string
	var args []any

	if filter.Name != "" {
		switch filter.NameMode {
		case MatchPrefix:
			where = append(where, "c.name LIKE ?")
			args = append(args, filter.Name+"%")
		case MatchContains:
			where = append(where, "c.name LIKE ?")
			args = append(args, "%"+filter.Name+"%")
		default:
			where = append(where, "c.name = ?")
			args = append(args, filter.Name)
		}
	}
	if filter.Type != "" {
		where = append(where, "c.type = ?")
		args = append(args, filter.Type)
	}
	if filter.Parent != "" {
		where = append(where, "c.parent = ?")
		args = append(args, filter.Parent)
	}
	if filter.Language != "" {
		where = append(where, "f.language = ?")
		args = append(args, filter.Language)
	}

	query := `SELECT ` + chunkSelectCols + ` FROM chunks c JOIN files f ON f.id = c.file_id`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: search chunks: %w", err)
	}
	defer rows.Close()
	return scanChunkRows(rows)
}
