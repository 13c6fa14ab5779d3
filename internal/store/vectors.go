package store

import (
	"fmt"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
)

// InsertVector stores vec for chunkID, replacing any existing vector for
// that chunk (vec0 virtual tables do not support INSERT OR REPLACE, so this
// deletes then inserts).
func (s *Store) InsertVector(chunkID int64, vec []float32) error {
	return insertVector(s.exec(), chunkID, vec)
}

func (t *Tx) InsertVector(chunkID int64, vec []float32) error {
	return insertVector(t.exec(), chunkID, vec)
}

func insertVector(x execer, chunkID int64, vec []float32) error {
	if _, err := x.Exec(`DELETE FROM chunk_vectors WHERE chunk_id = ?`, chunkID); err != nil {
		return fmt.Errorf("store: delete existing vector %d: %w", chunkID, err)
	}
	blob, err := sqlite_vec.SerializeFloat32(vec)
	if err != nil {
		return fmt.Errorf("store: serialize vector %d: %w", chunkID, err)
	}
	if _, err := x.Exec(`INSERT INTO chunk_vectors(chunk_id, embedding) VALUES (?, ?)`, chunkID, blob); err != nil {
		return fmt.Errorf("store: insert vector %d: %w", chunkID, err)
	}
	return nil
}

// DeleteVectors removes the vectors for the given chunk ids, if present.
func (s *Store) DeleteVectors(ids []int64) error {
	return deleteVectors(s.exec(), ids)
}

func (t *Tx) DeleteVectors(ids []int64) error {
	return deleteVectors(t.exec(), ids)
}

func deleteVectors(x execer, ids []int64) error {
	for _, id := range ids {
		if _, err := x.Exec(`DELETE FROM chunk_vectors WHERE chunk_id = ?`, id); err != nil {
			return fmt.Errorf("store: delete vector %d: %w", id, err)
		}
	}
	return nil
}

// KNNSearch returns the k nearest chunk vectors to query, ascending by
// cosine distance.
func (s *Store) KNNSearch(query []float32, k int) ([]VectorHit, error) {
	blob, err := sqlite_vec.SerializeFloat32(query)
	if err != nil {
		return nil, fmt.Errorf("store: serialize query vector: %w", err)
	}
	rows, err := s.db.Query(`SELECT chunk_id, vec_distance_cosine(embedding, ?) AS distance
		FROM chunk_vectors ORDER BY distance LIMIT ?`, blob, k)
	if err != nil {
		return nil, fmt.Errorf("store: knn search: %w", err)
	}
	defer rows.Close()

	var hits []VectorHit
	for rows.Next() {
		var h VectorHit
		if err := rows.Scan(&h.ChunkID, &h.Distance); err != nil {
			return nil, fmt.Errorf("store: scan knn hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
