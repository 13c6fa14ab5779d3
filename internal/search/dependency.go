package search

import (
	"context"

	"github.com/ctxengine/ctx/internal/store"
)

// Direction selects which edge direction DepTrace follows.
type Direction string

const (
	Imports    Direction = "imports"
	ImportedBy Direction = "importedBy"
)

// DepTrace breadth-first searches the dependency graph from startChunk,
// batching neighbor lookups per frontier layer through cache (which may be
// nil, in which case the store is queried directly). Newly discovered
// chunks at 0-based depth d score max(0, 1.0 - 0.2*d); results are returned
// in BFS discovery order.
func DepTrace(ctx context.Context, st *store.Store, cache *DepCache, startChunk int64, direction Direction, depth int) ([]Result, error) {
	visited := map[int64]bool{startChunk: true}
	frontier := []int64{startChunk}

	type discovery struct {
		id    int64
		depth int
	}
	var order []discovery

	for d := 0; d < depth && len(frontier) > 0; d++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		neighbors, err := neighborsFor(st, cache, frontier, direction)
		if err != nil {
			return nil, err
		}

		var next []int64
		for _, id := range frontier {
			for _, n := range neighbors[id] {
				if visited[n] {
					continue
				}
				visited[n] = true
				order = append(order, discovery{n, d})
				next = append(next, n)
			}
		}
		frontier = next
	}

	if len(order) == 0 {
		return nil, nil
	}

	ids := make([]int64, len(order))
	for i, o := range order {
		ids[i] = o.id
	}

	chunks, err := st.ChunksByIDs(ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*store.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}

	out := make([]Result, 0, len(order))
	for _, o := range order {
		c, ok := byID[o.id]
		if !ok {
			continue
		}
		score := 1.0 - 0.2*float64(o.depth)
		if score < 0 {
			score = 0
		}
		out = append(out, FromChunk(c, score))
	}
	return out, nil
}

func neighborsFor(st *store.Store, cache *DepCache, frontier []int64, direction Direction) (map[int64][]int64, error) {
	if cache != nil {
		return cache.NeighborsBatch(frontier, direction)
	}
	if direction == Imports {
		return st.OutgoingBatch(frontier)
	}
	return st.IncomingBatch(frontier)
}
