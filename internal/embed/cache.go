package embed

import (
	"fmt"

	"github.com/maypok86/otter"
)

// maxCacheWeight bounds the embedder cache; each entry is one boxed
// Embedder so a modest entry count is enough.
const maxCacheWeight = 64

// cacheKey identifies a cached Embedder by the parameters that determine
// its identity for the lifetime of one process.
type cacheKey struct {
	projectPath string
	provider    string
	model       string
	dimensions  int
}

// Cache memoizes Factory results by (projectPath, provider, model,
// dimensions) for the process lifetime, using the same weight-based cache
// the teacher uses for its file-context cache.
type Cache struct {
	factory Factory
	cache   otter.Cache[cacheKey, Embedder]
}

// NewCache wraps factory with a process-lifetime cache.
func NewCache(factory Factory) (*Cache, error) {
	c, err := otter.MustBuilder[cacheKey, Embedder](maxCacheWeight).
		Cost(func(cacheKey, Embedder) uint32 { return 1 }).
		CollectStats().
		Build()
	if err != nil {
		return nil, fmt.Errorf("embed: build cache: %w", err)
	}
	return &Cache{factory: factory, cache: c}, nil
}

// Get returns the cached Embedder for this key, constructing and caching it
// via the factory on a miss.
func (c *Cache) Get(projectPath, provider, model string, dimensions int) (Embedder, error) {
	key := cacheKey{projectPath: projectPath, provider: provider, model: model, dimensions: dimensions}
	if e, ok := c.cache.Get(key); ok {
		return e, nil
	}

	e, err := c.factory(provider, model, dimensions)
	if err != nil {
		return nil, err
	}
	c.cache.Set(key, e)
	return e, nil
}

// Close releases the underlying cache.
func (c *Cache) Close() { c.cache.Close() }
