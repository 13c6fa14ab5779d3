package indexpipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxengine/ctx/internal/config"
	"github.com/ctxengine/ctx/internal/store"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Embedder.Dimensions = 4
	return cfg
}

func TestEnforceEmbedderGateAdoptsConfigOnEmptyUnsetStore(t *testing.T) {
	t.Parallel()
	st := store.NewTestStore(t, 4)
	cfg := testConfig()

	require.NoError(t, enforceEmbedderGate(st, cfg))

	desc, err := st.IndexEmbedder()
	require.NoError(t, err)
	require.NotNil(t, desc)
	assert.Equal(t, cfg.Embedder.Provider, desc.Provider)
	assert.Equal(t, cfg.Embedder.Model, desc.Model)
	assert.Equal(t, cfg.Embedder.Dimensions, desc.Dimensions)
}

func TestEnforceEmbedderGateRejectsUnsetDescriptorOnNonEmptyStore(t *testing.T) {
	t.Parallel()
	st := store.NewTestStore(t, 4)
	cfg := testConfig()

	fileID, err := st.UpsertFile("a.go", "go", "h1", 1)
	require.NoError(t, err)
	_, err = st.InsertChunks(fileID, []store.ChunkInput{
		{ChunkKey: "a-fn", LineStart: 1, LineEnd: 1, Type: "function", Name: strPtr("Foo"), ContentHash: "c1"},
	})
	require.NoError(t, err)

	err = enforceEmbedderGate(st, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrEmbedderUnset)

	desc, descErr := st.IndexEmbedder()
	require.NoError(t, descErr)
	assert.Nil(t, desc)
}

func TestEnforceEmbedderGateAcceptsMatchingDescriptor(t *testing.T) {
	t.Parallel()
	st := store.NewTestStore(t, 4)
	cfg := testConfig()

	require.NoError(t, st.SetIndexEmbedder(store.EmbedderDescriptor{
		Provider:   cfg.Embedder.Provider,
		Model:      cfg.Embedder.Model,
		Dimensions: cfg.Embedder.Dimensions,
	}))

	assert.NoError(t, enforceEmbedderGate(st, cfg))
}

func TestEnforceEmbedderGateRejectsMismatchedDescriptor(t *testing.T) {
	t.Parallel()
	st := store.NewTestStore(t, 4)
	cfg := testConfig()

	require.NoError(t, st.SetIndexEmbedder(store.EmbedderDescriptor{
		Provider:   "openai",
		Model:      "text-embedding-3-small",
		Dimensions: cfg.Embedder.Dimensions,
	}))

	err := enforceEmbedderGate(st, cfg)
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrEmbedderMismatch)
}
