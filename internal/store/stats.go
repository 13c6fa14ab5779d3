package store

import (
	"database/sql"
	"fmt"
)

// Stats reports aggregate counts and the per-language file breakdown.
func (s *Store) Stats() (*Stats, error) {
	var st Stats
	st.FilesByLanguage = map[string]int{}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM files`).Scan(&st.FileCount); err != nil {
		return nil, fmt.Errorf("store: count files: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&st.ChunkCount); err != nil {
		return nil, fmt.Errorf("store: count chunks: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM chunk_vectors`).Scan(&st.VectorCount); err != nil {
		return nil, fmt.Errorf("store: count vectors: %w", err)
	}

	rows, err := s.db.Query(`SELECT language, COUNT(*) FROM files GROUP BY language`)
	if err != nil {
		return nil, fmt.Errorf("store: language breakdown: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var lang string
		var n int
		if err := rows.Scan(&lang, &n); err != nil {
			return nil, fmt.Errorf("store: scan language breakdown: %w", err)
		}
		st.FilesByLanguage[lang] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var last sql.NullString
	if err := s.db.QueryRow(`SELECT MAX(last_indexed) FROM files`).Scan(&last); err != nil {
		return nil, fmt.Errorf("store: last indexed: %w", err)
	}
	st.LastIndexed = last.String

	return &st, nil
}
