// Package core is the single entrypoint wiring configuration, the store,
// the embedder, the five search strategies, and fusion into the handful of
// operations a caller (the CLI, or any other embedder) needs: Init,
// IncrementalIndex, Query, NaturalLanguageQuery, Status, ReadConfig, and
// WriteConfig. Every operation scopes its own store handle and guarantees
// it is closed before returning, so callers never manage store lifetime
// themselves.
package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ctxengine/ctx/internal/classify"
	"github.com/ctxengine/ctx/internal/config"
	"github.com/ctxengine/ctx/internal/embed"
	"github.com/ctxengine/ctx/internal/embed/fakeembedder"
	"github.com/ctxengine/ctx/internal/fuse"
	"github.com/ctxengine/ctx/internal/indexpipeline"
	"github.com/ctxengine/ctx/internal/search"
	"github.com/ctxengine/ctx/internal/store"
)

// defaultDepTraceDepth bounds a generic Query's dependency-strategy BFS when
// the caller doesn't otherwise control traversal depth directly.
const defaultDepTraceDepth = 4

var (
	embedderFactoryMu sync.RWMutex
	embedderFactory   embed.Factory = defaultEmbedderFactory
	embedderCacheMu   sync.Mutex
	embedderCacheInst *embed.Cache
)

// SetEmbedderFactory overrides how Embedder instances are constructed from
// (provider, model, dimensions). Concrete providers (ONNX-backed local
// models, OpenAI, Voyage) live outside this module; a caller that wants
// anything beyond the "local" deterministic fallback must supply one.
func SetEmbedderFactory(f embed.Factory) {
	embedderFactoryMu.Lock()
	defer embedderFactoryMu.Unlock()
	embedderFactory = f
	embedderCacheMu.Lock()
	embedderCacheInst = nil
	embedderCacheMu.Unlock()
}

func defaultEmbedderFactory(provider, model string, dimensions int) (embed.Embedder, error) {
	if provider == "local" {
		return fakeembedder.New(dimensions), nil
	}
	return nil, fmt.Errorf("embed: provider %q has no default implementation; call core.SetEmbedderFactory first", provider)
}

func embedderCache() (*embed.Cache, error) {
	embedderCacheMu.Lock()
	defer embedderCacheMu.Unlock()
	if embedderCacheInst != nil {
		return embedderCacheInst, nil
	}
	embedderFactoryMu.RLock()
	f := embedderFactory
	embedderFactoryMu.RUnlock()
	c, err := embed.NewCache(f)
	if err != nil {
		return nil, err
	}
	embedderCacheInst = c
	return c, nil
}

func resolveEmbedder(root string, cfg *config.Config) (embed.Embedder, error) {
	cache, err := embedderCache()
	if err != nil {
		return nil, wrap(KindEmbedderFailed, err)
	}
	e, err := cache.Get(root, cfg.Embedder.Provider, cfg.Embedder.Model, cfg.Embedder.Dimensions)
	if err != nil {
		return nil, wrap(KindEmbedderFailed, err)
	}
	return e, nil
}

func dbPath(root string) string {
	return filepath.Join(root, ".ctx", "index.db")
}

func isInitialized(root string) bool {
	_, err := os.Stat(dbPath(root))
	return err == nil
}

// ReadConfig loads the project configuration at root, merging any
// .ctx/config.json onto defaults and applying CTX_* environment overrides.
func ReadConfig(root string) (*config.Config, error) {
	cfg, err := config.NewLoader(root).Load()
	if err != nil {
		return nil, classifyConfigErr(err)
	}
	return cfg, nil
}

// WriteConfig validates and persists cfg to root/.ctx/config.json.
func WriteConfig(root string, cfg *config.Config) error {
	if err := config.Validate(cfg); err != nil {
		return classifyConfigErr(err)
	}
	if err := config.NewLoader(root).Save(cfg); err != nil {
		return wrap(KindDbWriteFailed, err)
	}
	return nil
}

// Init bootstraps a new project at root: creates .ctx/, writes a default
// config.json if one isn't already present, and runs the first full index.
func Init(ctx context.Context, root string, opts indexpipeline.Options) (*indexpipeline.Stats, error) {
	if err := indexpipeline.EnsureProjectState(root); err != nil {
		return nil, wrap(KindDbWriteFailed, err)
	}

	cfgPath := filepath.Join(root, ".ctx", "config.json")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.NewLoader(root).Save(config.Default()); err != nil {
			return nil, wrap(KindConfigInvalid, err)
		}
	} else if err != nil {
		return nil, wrap(KindDbWriteFailed, err)
	}

	return IncrementalIndex(ctx, root, opts)
}

// IncrementalIndex runs discovery, change detection, and parse/chunk/embed
// for every added or modified file since the last run, against an
// already-initialized project.
func IncrementalIndex(ctx context.Context, root string, opts indexpipeline.Options) (*indexpipeline.Stats, error) {
	cfg, err := ReadConfig(root)
	if err != nil {
		return nil, err
	}

	var embedder embed.Embedder
	if !opts.SkipEmbedding {
		embedder, err = resolveEmbedder(root, cfg)
		if err != nil {
			return nil, err
		}
	}

	stats, err := indexpipeline.Index(ctx, root, opts, cfg, embedder)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	return stats, nil
}

// QueryOptions narrows a Query call. Strategies left empty uses the
// project's configured default set (§ Search.Strategies), with "vector"
// auto-added when the query classifies as natural language. DisableClassifier
// skips classification entirely (no auto strategy addition, no per-strategy
// weight multipliers) — the spec's classifier toggle, inverted so the Go
// zero value (false) preserves the documented default behavior.
type QueryOptions struct {
	Limit             int
	Strategies        []string
	Language          string
	DisableClassifier bool
}

// Query runs the project's query pipeline: classification, per-strategy
// retrieval, RRF fusion, and post-fusion re-ranking (internal/fuse).
func Query(ctx context.Context, root, q string, opts QueryOptions) ([]search.Result, error) {
	if !isInitialized(root) {
		return nil, wrap(KindNotInitialized, ErrNotInitialized)
	}
	cfg, err := ReadConfig(root)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(dbPath(root), cfg.Embedder.Dimensions)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	defer st.Close()

	limit := opts.Limit
	if limit <= 0 {
		limit = cfg.Search.DefaultLimit
	}

	strategies := opts.Strategies
	usingDefaults := len(strategies) == 0
	if usingDefaults {
		strategies = append([]string{}, cfg.Search.Strategies...)
	}

	classification := classify.Classification{Multipliers: map[string]float64{}}
	if !opts.DisableClassifier {
		classification = classify.Classify(q)
		if usingDefaults && classification.Kind == classify.KindNaturalLanguage && !containsStrategy(strategies, "vector") {
			strategies = append(strategies, "vector")
		}
	}

	filters := search.Filters{Language: opts.Language}

	var weighted []fuse.Weighted
	var depCache *search.DepCache
	for _, strat := range strategies {
		results, weight, err := runStrategy(ctx, st, &depCache, strat, q, limit, root, cfg, classification, filters)
		if err != nil {
			return nil, wrap(KindSearchFailed, err)
		}
		if len(results) == 0 {
			continue
		}
		weighted = append(weighted, fuse.Weighted{Strategy: strat, Weight: weight, Results: results})
	}
	if depCache != nil {
		defer depCache.Close()
	}

	return fuse.Rerank(q, weighted, limit), nil
}

func containsStrategy(strategies []string, name string) bool {
	for _, s := range strategies {
		if s == name {
			return true
		}
	}
	return false
}

func runStrategy(
	ctx context.Context,
	st *store.Store,
	depCache **search.DepCache,
	strat, q string,
	limit int,
	root string,
	cfg *config.Config,
	classification classify.Classification,
	filters search.Filters,
) ([]search.Result, float64, error) {
	weight := cfg.Search.Weights[strat] * multiplierFor(classification, strat)

	switch strat {
	case "vector":
		embedder, err := resolveEmbedder(root, cfg)
		if err != nil {
			return nil, 0, err
		}
		res, err := search.Vector(ctx, st, embedder, q, limit, filters)
		return res, weight, err

	case "fts":
		res, err := search.FTS(ctx, st, q, limit, filters)
		return res, weight, err

	case "ast":
		mode := store.MatchContains
		if classification.Kind == classify.KindSymbol {
			mode = store.MatchExact
		}
		res, err := search.AST(ctx, st, search.SymbolQuery{Name: q, Language: filters.Language, MatchMode: mode}, limit)
		return res, weight, err

	case "path":
		if strings.ContainsAny(q, "*?") {
			res, err := search.PathGlob(ctx, st, q, limit)
			return res, weight, err
		}
		res, err := search.PathKeyword(ctx, st, q, limit)
		return res, weight, err

	case "dependency":
		start, err := startChunkForDependencyTrace(ctx, st, q)
		if err != nil {
			return nil, 0, err
		}
		if start == 0 {
			return nil, weight, nil
		}
		if *depCache == nil {
			c, err := search.NewDepCache(st)
			if err != nil {
				return nil, 0, err
			}
			*depCache = c
		}
		res, err := search.DepTrace(ctx, st, *depCache, start, search.Imports, defaultDepTraceDepth)
		return res, weight, err

	default:
		return nil, 0, fmt.Errorf("unknown search strategy %q", strat)
	}
}

func multiplierFor(c classify.Classification, strat string) float64 {
	if c.Multipliers == nil {
		return 1.0
	}
	if m, ok := c.Multipliers[strat]; ok {
		return m
	}
	return 1.0
}

// startChunkForDependencyTrace resolves a raw query string to a seed chunk
// for dependency BFS by looking it up as an exact symbol name; it is a
// best-effort convenience for the generic Query entrypoint, not a
// replacement for callers that already know their starting chunk id.
func startChunkForDependencyTrace(ctx context.Context, st *store.Store, q string) (int64, error) {
	res, err := search.AST(ctx, st, search.SymbolQuery{Name: q, MatchMode: store.MatchExact}, 1)
	if err != nil {
		return 0, err
	}
	if len(res) == 0 {
		return 0, nil
	}
	return res[0].ChunkID, nil
}

// NLOptions narrows a NaturalLanguageQuery call. A nil Plan runs the
// project's own default Query pipeline; a non-nil Plan hands control to an
// external planner (e.g. an LLM) that drives retrieval through its own
// SearchExecutor, one strategy subset at a time.
type NLOptions struct {
	Limit int
	Plan  SearchExecutor
}

// NaturalLanguageQuery is Query's entrypoint for callers that may supply an
// external planner. With no Plan, it behaves exactly like Query with
// classification enabled.
func NaturalLanguageQuery(ctx context.Context, root, q string, opts NLOptions) ([]search.Result, error) {
	limit := opts.Limit
	if limit <= 0 {
		cfg, err := ReadConfig(root)
		if err != nil {
			return nil, err
		}
		limit = cfg.Search.DefaultLimit
	}

	if opts.Plan != nil {
		results, err := opts.Plan.Execute(ctx, nil, limit)
		if err != nil {
			return nil, wrap(KindSearchFailed, err)
		}
		return results, nil
	}

	return Query(ctx, root, q, QueryOptions{Limit: limit})
}

// DependencyPath resolves from and to as exact symbol names and returns the
// chain of chunks connecting them along "imports" edges, shortest first, via
// DepCache's in-memory graph.ShortestPath. It returns an empty, nil-error
// result when either symbol is unresolved or no path exists within the
// traversal's depth budget.
func DependencyPath(ctx context.Context, root, from, to string) ([]search.Result, error) {
	if !isInitialized(root) {
		return nil, wrap(KindNotInitialized, ErrNotInitialized)
	}
	cfg, err := ReadConfig(root)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(dbPath(root), cfg.Embedder.Dimensions)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	defer st.Close()

	fromChunk, err := startChunkForDependencyTrace(ctx, st, from)
	if err != nil {
		return nil, wrap(KindSearchFailed, err)
	}
	toChunk, err := startChunkForDependencyTrace(ctx, st, to)
	if err != nil {
		return nil, wrap(KindSearchFailed, err)
	}
	if fromChunk == 0 || toChunk == 0 {
		return nil, nil
	}

	cache, err := search.NewDepCache(st)
	if err != nil {
		return nil, wrap(KindSearchFailed, err)
	}
	defer cache.Close()

	ids, err := cache.PathBetween(fromChunk, toChunk)
	if err != nil {
		return nil, nil
	}

	chunks, err := st.ChunksByIDs(ids)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	byID := make(map[int64]*store.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}

	out := make([]search.Result, 0, len(ids))
	for i, id := range ids {
		c, ok := byID[id]
		if !ok {
			continue
		}
		score := 1.0
		if n := len(ids); n > 1 {
			score = 1.0 - float64(i)/float64(n)
		}
		out = append(out, search.FromChunk(c, score))
	}
	return out, nil
}

// StatusReport summarizes a project's current index state for `ctx status`.
type StatusReport struct {
	Initialized   bool
	SchemaVersion string
	Embedder      *store.EmbedderDescriptor
	Stats         *store.Stats
	Config        *config.Config
}

// Status reports whether root is initialized and, if so, its index
// statistics and recorded embedder descriptor.
func Status(ctx context.Context, root string) (*StatusReport, error) {
	cfg, err := ReadConfig(root)
	if err != nil {
		return nil, err
	}
	if !isInitialized(root) {
		return &StatusReport{Initialized: false, Config: cfg}, nil
	}

	st, err := store.Open(dbPath(root), cfg.Embedder.Dimensions)
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	defer st.Close()

	schemaVersion, err := st.SchemaVersion()
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	descriptor, err := st.IndexEmbedder()
	if err != nil {
		return nil, classifyStoreErr(err)
	}
	stats, err := st.Stats()
	if err != nil {
		return nil, classifyStoreErr(err)
	}

	return &StatusReport{
		Initialized:   true,
		SchemaVersion: schemaVersion,
		Embedder:      descriptor,
		Stats:         stats,
		Config:        cfg,
	}, nil
}
