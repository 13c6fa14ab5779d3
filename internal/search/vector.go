package search

import (
	"context"
	"fmt"
	"sort"

	"github.com/ctxengine/ctx/internal/embed"
	"github.com/ctxengine/ctx/internal/store"
)

// Vector embeds query and returns the k nearest chunks by cosine distance.
func Vector(ctx context.Context, st *store.Store, embedder embed.Embedder, query string, k int, filters Filters) ([]Result, error) {
	vec, err := embedder.EmbedSingle(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search: embed query: %w", err)
	}

	fetch := k
	if filters.Language != "" {
		fetch = k * 3
	}

	hits, err := st.KNNSearch(vec, fetch)
	if err != nil {
		return nil, fmt.Errorf("search: knn: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(hits))
	distanceByID := make(map[int64]float64, len(hits))
	for i, h := range hits {
		ids[i] = h.ChunkID
		distanceByID[h.ChunkID] = h.Distance
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
		score := 1.0 / (1.0 + distanceByID[c.ID])
		out = append(out, FromChunk(c, score))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > k {
		out = out[:k]
	}
	return out, nil
}
