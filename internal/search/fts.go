package search

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/ctxengine/ctx/internal/store"
)

// FTS sanitizes query, runs it against the FTS5 index, and returns the top
// k hits. A query that sanitizes to empty short-circuits to no results.
func FTS(ctx context.Context, st *store.Store, query string, k int, filters Filters) ([]Result, error) {
	sanitized := SanitizeFTSQuery(query)
	if sanitized == "" {
		return nil, nil
	}

	fetch := k
	if filters.Language != "" {
		fetch = k * 3
	}

	hits, err := st.FTSSearch(sanitized, fetch)
	if err != nil {
		return nil, fmt.Errorf("search: fts: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(hits))
	rankByID := make(map[int64]float64, len(hits))
	for i, h := range hits {
		ids[i] = h.ChunkID
		rankByID[h.ChunkID] = h.Rank
	}

	chunks, err := st.ChunksByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("search: load chunks: %w", err)
	}

	var out []Result
	for _, c := range chunks {
		if filters.Language != "" && c.Language != filters.Language {
			continue
		}
		score := 1.0 / (1.0 + math.Abs(rankByID[c.ID]))
		out = append(out, FromChunk(c, score))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
