package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxengine/ctx/internal/indexpipeline"
	"github.com/ctxengine/ctx/internal/store"
)

// seedDependencyEdge looks up two exact-named chunks already indexed by
// initProject and records a direct "imports" edge between them. The
// indexer's own import-text resolver (internal/indexpipeline/depedges.go)
// attaches edges to a file's leading import chunk rather than to any one
// symbol inside it, so exercising the dependency strategy's per-symbol BFS
// end-to-end calls for a directly seeded edge instead of relying on that
// file-level resolution picking the exact two function chunks under test.
func seedDependencyEdge(t *testing.T, root, fromName, toName string) {
	t.Helper()
	cfg, err := ReadConfig(root)
	require.NoError(t, err)
	st, err := store.Open(dbPath(root), cfg.Embedder.Dimensions)
	require.NoError(t, err)
	defer st.Close()

	from, err := st.SearchChunks(store.SearchChunksFilter{Name: fromName, NameMode: store.MatchExact}, 1)
	require.NoError(t, err)
	require.NotEmpty(t, from)
	to, err := st.SearchChunks(store.SearchChunksFilter{Name: toName, NameMode: store.MatchExact}, 1)
	require.NoError(t, err)
	require.NotEmpty(t, to)

	require.NoError(t, st.InsertDep(from[0].ID, to[0].ID, "imports"))
}

func writeFile(t *testing.T, root, rel, contents string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func initProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, root, "helper.go", `package demo

func helperFunc() int {
	return 1
}
`)
	writeFile(t, root, "auth.go", `package demo

import "demo/helper"

// validateToken checks that a bearer token is well-formed.
func validateToken(tok string) bool {
	return helper.HelperFunc() > 0 && tok != ""
}
`)

	ctx := context.Background()
	_, err := Init(ctx, root, indexpipeline.Options{})
	require.NoError(t, err)
	return root
}

func TestInitCreatesProjectState(t *testing.T) {
	t.Parallel()
	root := initProject(t)

	_, err := os.Stat(filepath.Join(root, ".ctx", "index.db"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, ".ctx", "config.json"))
	assert.NoError(t, err)
}

func TestQueryFindsSymbolAcrossFiles(t *testing.T) {
	t.Parallel()
	root := initProject(t)

	results, err := Query(context.Background(), root, "validateToken", QueryOptions{Strategies: []string{"ast"}})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "auth.go", results[0].FilePath)
}

func TestQueryOnUninitializedProjectFails(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	_, err := Query(context.Background(), root, "anything", QueryOptions{})
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindNotInitialized, ce.Kind)
}

func TestIncrementalIndexKeepsChunkIDStableAcrossUnrelatedEdit(t *testing.T) {
	t.Parallel()
	root := initProject(t)

	before, err := Query(context.Background(), root, "validateToken", QueryOptions{Strategies: []string{"ast"}})
	require.NoError(t, err)
	require.NotEmpty(t, before)
	beforeID := before[0].ChunkID

	// Touch helper.go only; auth.go (and validateToken's chunk) is untouched.
	writeFile(t, root, "helper.go", `package demo

func helperFunc() int {
	return 2
}
`)
	_, err = IncrementalIndex(context.Background(), root, indexpipeline.Options{})
	require.NoError(t, err)

	after, err := Query(context.Background(), root, "validateToken", QueryOptions{Strategies: []string{"ast"}})
	require.NoError(t, err)
	require.NotEmpty(t, after)
	assert.Equal(t, beforeID, after[0].ChunkID)
}

func TestQueryPathGlobVsKeyword(t *testing.T) {
	t.Parallel()
	root := initProject(t)
	writeFile(t, root, "internal/auth/token.go", `package auth

func Check() bool { return true }
`)
	_, err := IncrementalIndex(context.Background(), root, indexpipeline.Options{})
	require.NoError(t, err)

	glob, err := Query(context.Background(), root, "internal/auth/**", QueryOptions{Strategies: []string{"path"}})
	require.NoError(t, err)
	require.NotEmpty(t, glob)
	assert.Equal(t, "internal/auth/token.go", glob[0].FilePath)

	keyword, err := Query(context.Background(), root, "auth", QueryOptions{Strategies: []string{"path"}})
	require.NoError(t, err)
	require.NotEmpty(t, keyword)
}

func TestQueryDependencyStrategyWalksImportEdge(t *testing.T) {
	t.Parallel()
	root := initProject(t)
	seedDependencyEdge(t, root, "validateToken", "helperFunc")

	results, err := Query(context.Background(), root, "validateToken", QueryOptions{Strategies: []string{"dependency"}})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "helper.go", results[0].FilePath)
}

func TestDependencyPathResolvesChainBetweenSymbols(t *testing.T) {
	t.Parallel()
	root := initProject(t)
	seedDependencyEdge(t, root, "validateToken", "helperFunc")

	path, err := DependencyPath(context.Background(), root, "validateToken", "helperFunc")
	require.NoError(t, err)
	require.NotEmpty(t, path)
	assert.Equal(t, "helper.go", path[len(path)-1].FilePath)
}

func TestDependencyPathUnresolvedSymbolReturnsEmpty(t *testing.T) {
	t.Parallel()
	root := initProject(t)

	path, err := DependencyPath(context.Background(), root, "validateToken", "doesNotExist")
	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestStatusReportsInitializedProject(t *testing.T) {
	t.Parallel()
	root := initProject(t)

	report, err := Status(context.Background(), root)
	require.NoError(t, err)
	assert.True(t, report.Initialized)
	require.NotNil(t, report.Stats)
	assert.Equal(t, 2, report.Stats.FileCount)
	require.NotNil(t, report.Embedder)
	assert.Equal(t, "local", report.Embedder.Provider)
}

func TestStatusOnUninitializedProject(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	report, err := Status(context.Background(), root)
	require.NoError(t, err)
	assert.False(t, report.Initialized)
}

func TestReadWriteConfigRoundTrip(t *testing.T) {
	t.Parallel()
	root := initProject(t)

	cfg, err := ReadConfig(root)
	require.NoError(t, err)
	cfg.Search.DefaultLimit = 5

	require.NoError(t, WriteConfig(root, cfg))

	reloaded, err := ReadConfig(root)
	require.NoError(t, err)
	assert.Equal(t, 5, reloaded.Search.DefaultLimit)
}

func TestNaturalLanguageQueryUsesDefaultPipelineWithoutPlan(t *testing.T) {
	t.Parallel()
	root := initProject(t)

	results, err := NaturalLanguageQuery(context.Background(), root, "validateToken", NLOptions{})
	require.NoError(t, err)
	assert.NotEmpty(t, results)
}
