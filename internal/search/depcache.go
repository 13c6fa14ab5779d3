package search

import (
	"fmt"

	"github.com/dominikbraun/graph"
	"github.com/maypok86/otter"

	"github.com/ctxengine/ctx/internal/store"
)

const maxDepCacheWeight = 10000

// depCacheKey identifies one chunk's neighbor set in one traversal direction.
type depCacheKey struct {
	chunkID   int64
	direction Direction
}

// DepCache memoizes per-process-lifetime neighbor lookups for repeated
// DepTrace calls against an unchanged index generation — the store's
// Outgoing/Incoming queries remain the source of truth; this only avoids
// re-querying unchanged neighborhoods. Every edge it learns is also recorded
// into an in-memory dominikbraun/graph, mirroring the teacher's
// internal/graph/searcher.go (graph.Graph + graph.ShortestPath), so repeated
// PathBetween calls over an already-traced neighborhood don't re-walk the
// store either.
type DepCache struct {
	st    *store.Store
	cache otter.Cache[depCacheKey, []int64]
	g     graph.Graph[int64, int64]
}

// NewDepCache builds a dependency adjacency cache in front of st.
func NewDepCache(st *store.Store) (*DepCache, error) {
	c, err := otter.MustBuilder[depCacheKey, []int64](maxDepCacheWeight).
		Cost(func(depCacheKey, []int64) uint32 { return 1 }).
		CollectStats().
		Build()
	if err != nil {
		return nil, err
	}
	g := graph.New(func(id int64) int64 { return id }, graph.Directed())
	return &DepCache{st: st, cache: c, g: g}, nil
}

// NeighborsBatch resolves the neighbor set for every id in frontier not
// already cached, fetching the misses from the store in one batched query.
func (d *DepCache) NeighborsBatch(frontier []int64, direction Direction) (map[int64][]int64, error) {
	result := map[int64][]int64{}
	var misses []int64
	for _, id := range frontier {
		if n, ok := d.cache.Get(depCacheKey{id, direction}); ok {
			result[id] = n
		} else {
			misses = append(misses, id)
		}
	}
	if len(misses) == 0 {
		return result, nil
	}

	var fetched map[int64][]int64
	var err error
	if direction == Imports {
		fetched, err = d.st.OutgoingBatch(misses)
	} else {
		fetched, err = d.st.IncomingBatch(misses)
	}
	if err != nil {
		return nil, err
	}
	for _, id := range misses {
		n := fetched[id]
		d.cache.Set(depCacheKey{id, direction}, n)
		result[id] = n
		d.recordEdges(id, n, direction)
	}
	return result, nil
}

// recordEdges mirrors a newly-fetched neighbor set into the in-memory graph
// so PathBetween can answer shortest-path queries without re-walking the
// store, as long as the relevant neighborhood has already been traced.
func (d *DepCache) recordEdges(id int64, neighbors []int64, direction Direction) {
	_ = d.g.AddVertex(id)
	for _, n := range neighbors {
		_ = d.g.AddVertex(n)
		from, to := id, n
		if direction == ImportedBy {
			from, to = n, id
		}
		_ = d.g.AddEdge(from, to)
	}
}

// maxPathBetweenDepth bounds how many BFS layers PathBetween will expand
// from "from" while searching for "to" before giving up.
const maxPathBetweenDepth = 12

// PathBetween returns the shortest chain of chunk IDs connecting from to to
// along "imports" edges, expanding the in-memory graph via DepCache's own
// NeighborsBatch (so the expansion benefits from and contributes to the same
// cache DepTrace uses) until to is reached or the depth budget is spent, then
// running graph.ShortestPath over the resulting subgraph.
func (d *DepCache) PathBetween(from, to int64) ([]int64, error) {
	visited := map[int64]bool{from: true}
	frontier := []int64{from}
	for depth := 0; depth < maxPathBetweenDepth && len(frontier) > 0; depth++ {
		found := false
		for _, id := range frontier {
			if id == to {
				found = true
			}
		}
		if found {
			break
		}
		neighbors, err := d.NeighborsBatch(frontier, Imports)
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
				next = append(next, n)
			}
		}
		frontier = next
	}

	path, err := graph.ShortestPath(d.g, from, to)
	if err != nil {
		return nil, fmt.Errorf("search: no dependency path from chunk %d to chunk %d within %d hops: %w", from, to, maxPathBetweenDepth, err)
	}
	return path, nil
}

// Close releases the underlying cache. The in-memory graph is left to the
// garbage collector along with the DepCache itself.
func (d *DepCache) Close() { d.cache.Close() }
