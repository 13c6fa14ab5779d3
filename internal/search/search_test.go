package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxengine/ctx/internal/embed/fakeembedder"
	"github.com/ctxengine/ctx/internal/store"
)

func name(s string) *string { return &s }

func seedChunk(t *testing.T, st *store.Store, path, chunkType, chunkName, text string, line int) int64 {
	t.Helper()
	fileID, err := st.UpsertFile(path, "go", "h-"+path, int64(len(text)))
	require.NoError(t, err)
	ids, err := st.InsertChunks(fileID, []store.ChunkInput{
		{ChunkKey: chunkName + path, LineStart: line, LineEnd: line + 1, Type: chunkType, Name: name(chunkName), Text: text, ContentHash: "c-" + chunkName},
	})
	require.NoError(t, err)
	return ids[0]
}

func TestASTExactPrefixContainsScores(t *testing.T) {
	t.Parallel()
	st := store.NewTestStore(t, 4)
	seedChunk(t, st, "a.go", "function", "validateToken", "func validateToken(){}", 1)

	exact, err := AST(context.Background(), st, SymbolQuery{Name: "validateToken", MatchMode: store.MatchExact}, 10)
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, 1.0, exact[0].Score)

	prefix, err := AST(context.Background(), st, SymbolQuery{Name: "validate", MatchMode: store.MatchPrefix}, 10)
	require.NoError(t, err)
	require.Len(t, prefix, 1)
	assert.Equal(t, 0.8, prefix[0].Score)

	contains, err := AST(context.Background(), st, SymbolQuery{Name: "Token", MatchMode: store.MatchContains}, 10)
	require.NoError(t, err)
	require.Len(t, contains, 1)
	assert.Equal(t, 0.5, contains[0].Score)
}

func TestPathGlobMatchesNestedDirectories(t *testing.T) {
	t.Parallel()
	st := store.NewTestStore(t, 4)
	seedChunk(t, st, "internal/auth/token.go", "function", "f", "func f(){}", 1)
	seedChunk(t, st, "internal/web/server.go", "function", "g", "func g(){}", 1)

	res, err := PathGlob(context.Background(), st, "internal/auth/**", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "internal/auth/token.go", res[0].FilePath)
}

func TestPathKeywordScoring(t *testing.T) {
	t.Parallel()
	st := store.NewTestStore(t, 4)
	seedChunk(t, st, "internal/auth/token.go", "function", "f", "func f(){}", 1)

	exactSegment, err := PathKeyword(context.Background(), st, "auth", 10)
	require.NoError(t, err)
	require.Len(t, exactSegment, 1)
	assert.Equal(t, 1.0, exactSegment[0].Score)

	filenameMatch, err := PathKeyword(context.Background(), st, "token", 10)
	require.NoError(t, err)
	require.Len(t, filenameMatch, 1)
	assert.Equal(t, 0.9, filenameMatch[0].Score)

	substring, err := PathKeyword(context.Background(), st, "oke", 10)
	require.NoError(t, err)
	require.Len(t, substring, 1)
	assert.Equal(t, 0.7, substring[0].Score)
}

func TestVectorSearchReturnsNearestFirst(t *testing.T) {
	t.Parallel()
	st := store.NewTestStore(t, 8)
	embedder := fakeembedder.New(8)

	id1 := seedChunk(t, st, "a.go", "function", "near", "same text as query", 1)
	vec1, err := embedder.EmbedSingle(context.Background(), "same text as query")
	require.NoError(t, err)
	require.NoError(t, st.InsertVector(id1, vec1))

	id2 := seedChunk(t, st, "b.go", "function", "far", "completely unrelated content", 1)
	vec2, err := embedder.EmbedSingle(context.Background(), "completely unrelated content")
	require.NoError(t, err)
	require.NoError(t, st.InsertVector(id2, vec2))

	res, err := Vector(context.Background(), st, embedder, "same text as query", 2, Filters{})
	require.NoError(t, err)
	require.NotEmpty(t, res)
	assert.Equal(t, id1, res[0].ChunkID)
}

func TestDepTraceBFSOrderAndDecreasingScore(t *testing.T) {
	t.Parallel()
	st := store.NewTestStore(t, 4)
	a := seedChunk(t, st, "a.go", "function", "a", "func a(){}", 1)
	b := seedChunk(t, st, "b.go", "function", "b", "func b(){}", 1)
	c := seedChunk(t, st, "c.go", "function", "c", "func c(){}", 1)
	d := seedChunk(t, st, "d.go", "function", "d", "func d(){}", 1)

	require.NoError(t, st.InsertDep(a, b, "imports"))
	require.NoError(t, st.InsertDep(b, c, "imports"))
	require.NoError(t, st.InsertDep(c, d, "imports"))

	res, err := DepTrace(context.Background(), st, nil, a, Imports, 4)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, b, res[0].ChunkID)
	assert.Equal(t, c, res[1].ChunkID)
	assert.Equal(t, d, res[2].ChunkID)
	assert.True(t, res[0].Score > res[1].Score)
	assert.True(t, res[1].Score > res[2].Score)
}

func TestDepTraceDoesNotRevisitOnCycle(t *testing.T) {
	t.Parallel()
	st := store.NewTestStore(t, 4)
	a := seedChunk(t, st, "a.go", "function", "a", "func a(){}", 1)
	b := seedChunk(t, st, "b.go", "function", "b", "func b(){}", 1)

	require.NoError(t, st.InsertDep(a, b, "imports"))
	require.NoError(t, st.InsertDep(b, a, "imports"))

	res, err := DepTrace(context.Background(), st, nil, a, Imports, 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, b, res[0].ChunkID)
}

func TestDepCacheNeighborsBatchMatchesDirectStore(t *testing.T) {
	t.Parallel()
	st := store.NewTestStore(t, 4)
	a := seedChunk(t, st, "a.go", "function", "a", "func a(){}", 1)
	b := seedChunk(t, st, "b.go", "function", "b", "func b(){}", 1)
	require.NoError(t, st.InsertDep(a, b, "imports"))

	cache, err := NewDepCache(st)
	require.NoError(t, err)
	defer cache.Close()

	withCache, err := DepTrace(context.Background(), st, cache, a, Imports, 2)
	require.NoError(t, err)
	withoutCache, err := DepTrace(context.Background(), st, nil, a, Imports, 2)
	require.NoError(t, err)
	require.Equal(t, withoutCache, withCache)
}

func TestDepCachePathBetweenShortestPath(t *testing.T) {
	t.Parallel()
	st := store.NewTestStore(t, 4)
	a := seedChunk(t, st, "a.go", "function", "a", "func a(){}", 1)
	b := seedChunk(t, st, "b.go", "function", "b", "func b(){}", 1)
	c := seedChunk(t, st, "c.go", "function", "c", "func c(){}", 1)
	// a -> c directly, and a -> b -> c the long way; shortest path must pick the direct edge.
	require.NoError(t, st.InsertDep(a, b, "imports"))
	require.NoError(t, st.InsertDep(b, c, "imports"))
	require.NoError(t, st.InsertDep(a, c, "imports"))

	cache, err := NewDepCache(st)
	require.NoError(t, err)
	defer cache.Close()

	path, err := cache.PathBetween(a, c)
	require.NoError(t, err)
	assert.Equal(t, []int64{a, c}, path)
}

func TestDepCachePathBetweenNoPath(t *testing.T) {
	t.Parallel()
	st := store.NewTestStore(t, 4)
	a := seedChunk(t, st, "a.go", "function", "a", "func a(){}", 1)
	b := seedChunk(t, st, "b.go", "function", "b", "func b(){}", 1)

	cache, err := NewDepCache(st)
	require.NoError(t, err)
	defer cache.Close()

	_, err = cache.PathBetween(a, b)
	assert.Error(t, err)
}
