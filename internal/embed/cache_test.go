package embed

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct{ id int }

func (s *stubEmbedder) Name() string       { return fmt.Sprintf("stub-%d", s.id) }
func (s *stubEmbedder) Dimensions() int    { return 4 }
func (s *stubEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	return nil, nil
}
func (s *stubEmbedder) Embed(ctx context.Context, texts []string, progress ProgressFunc) ([][]float32, error) {
	return nil, nil
}

func TestCacheGetMemoizesByKey(t *testing.T) {
	t.Parallel()
	calls := 0
	factory := func(provider, model string, dimensions int) (Embedder, error) {
		calls++
		return &stubEmbedder{id: calls}, nil
	}

	c, err := NewCache(factory)
	require.NoError(t, err)
	defer c.Close()

	first, err := c.Get("/proj", "local", "m", 4)
	require.NoError(t, err)
	second, err := c.Get("/proj", "local", "m", 4)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestCacheGetDistinguishesKeys(t *testing.T) {
	t.Parallel()
	calls := 0
	factory := func(provider, model string, dimensions int) (Embedder, error) {
		calls++
		return &stubEmbedder{id: calls}, nil
	}

	c, err := NewCache(factory)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get("/proj-a", "local", "m", 4)
	require.NoError(t, err)
	_, err = c.Get("/proj-b", "local", "m", 4)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestCacheGetPropagatesFactoryError(t *testing.T) {
	t.Parallel()
	wantErr := fmt.Errorf("boom")
	factory := func(provider, model string, dimensions int) (Embedder, error) {
		return nil, wantErr
	}

	c, err := NewCache(factory)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Get("/proj", "local", "m", 4)
	assert.ErrorIs(t, err, wantErr)
}
