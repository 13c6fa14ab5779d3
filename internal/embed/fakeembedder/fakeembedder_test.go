package fakeembedder

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedSingleIsDeterministicAndUnitNorm(t *testing.T) {
	t.Parallel()
	e := New(16)

	v1, err := e.EmbedSingle(context.Background(), "hello world")
	require.NoError(t, err)
	v2, err := e.EmbedSingle(context.Background(), "hello world")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)

	var sumSq float64
	for _, x := range v1 {
		sumSq += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSq), 1e-5)
}

func TestEmbedSingleDiffersForDifferentText(t *testing.T) {
	t.Parallel()
	e := New(16)

	a, err := e.EmbedSingle(context.Background(), "alpha")
	require.NoError(t, err)
	b, err := e.EmbedSingle(context.Background(), "beta")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestEmbedReportsProgressPerText(t *testing.T) {
	t.Parallel()
	e := New(8)
	var calls [][2]int
	_, err := e.Embed(context.Background(), []string{"a", "b", "c"}, func(done, total int) {
		calls = append(calls, [2]int{done, total})
	})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestEmbedRespectsContextCancellation(t *testing.T) {
	t.Parallel()
	e := New(8)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Embed(ctx, []string{"a"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeLeavesZeroVectorUnchanged(t *testing.T) {
	t.Parallel()
	zero := []float32{0, 0, 0}
	assert.Equal(t, zero, Normalize(zero))
}

func TestDimensionsAndName(t *testing.T) {
	t.Parallel()
	e := New(384)
	assert.Equal(t, 384, e.Dimensions())
	assert.Equal(t, "local", e.Name())
}
