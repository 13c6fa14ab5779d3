package store

import (
	"fmt"
	"strings"
)

// InsertDep records a directed dependency edge. Both endpoints must already
// exist as chunk rows.
func (s *Store) InsertDep(source, target int64, relation string) error {
	_, err := s.db.Exec(`INSERT INTO dependencies(source_chunk_id, target_chunk_id, relation) VALUES (?, ?, ?)`,
		source, target, relation)
	if err != nil {
		return fmt.Errorf("store: insert dependency: %w", err)
	}
	return nil
}

// Edge is one dependency-graph edge endpoint as returned by Outgoing/Incoming.
type Edge struct {
	ChunkID  int64
	Relation string
}

// Outgoing returns the chunks that source imports (the "imports" direction).
func (s *Store) Outgoing(source int64) ([]Edge, error) {
	return s.queryEdges(`SELECT target_chunk_id, relation FROM dependencies WHERE source_chunk_id = ?`, source)
}

// Incoming returns the chunks that import target (the "importedBy" direction).
func (s *Store) Incoming(target int64) ([]Edge, error) {
	return s.queryEdges(`SELECT source_chunk_id, relation FROM dependencies WHERE target_chunk_id = ?`, target)
}

func (s *Store) queryEdges(query string, arg int64) ([]Edge, error) {
	rows, err := s.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("store: query edges: %w", err)
	}
	defer rows.Close()
	var out []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.ChunkID, &e.Relation); err != nil {
			return nil, fmt.Errorf("store: scan edge: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// OutgoingBatch batches the Outgoing lookup across a BFS frontier, avoiding
// one round trip per chunk.
func (s *Store) OutgoingBatch(sources []int64) (map[int64][]int64, error) {
	return s.batchEdges("source_chunk_id", "target_chunk_id", sources)
}

// IncomingBatch batches the Incoming lookup across a BFS frontier.
func (s *Store) IncomingBatch(targets []int64) (map[int64][]int64, error) {
	return s.batchEdges("target_chunk_id", "source_chunk_id", targets)
}

func (s *Store) batchEdges(keyCol, valCol string, keys []int64) (map[int64][]int64, error) {
	result := map[int64][]int64{}
	if len(keys) == 0 {
		return result, nil
	}
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		placeholders[i] = "?"
		args[i] = k
	}
	query := fmt.Sprintf(`SELECT %s, %s FROM dependencies WHERE %s IN (%s)`, keyCol, valCol, keyCol, strings.Join(placeholders, ","))
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: batch edges: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var k, v int64
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("store: scan batch edge: %w", err)
		}
		result[k] = append(result[k], v)
	}
	return result, rows.Err()
}
