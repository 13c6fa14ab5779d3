package store

import "fmt"

// FTSSearch runs query (already sanitized by the caller, §4.9) against the
// chunks_fts index, returning hits ordered by FTS5's bm25 rank (ascending;
// more negative is better).
func (s *Store) FTSSearch(query string, limit int) ([]FTSHit, error) {
	rows, err := s.db.Query(`SELECT rowid, bm25(chunks_fts) AS rank FROM chunks_fts
		WHERE chunks_fts MATCH ? ORDER BY rank LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("store: fts search: %w", err)
	}
	defer rows.Close()

	var hits []FTSHit
	for rows.Next() {
		var h FTSHit
		if err := rows.Scan(&h.ChunkID, &h.Rank); err != nil {
			return nil, fmt.Errorf("store: scan fts hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
