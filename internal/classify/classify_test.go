package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPathLikeQuery(t *testing.T) {
	t.Parallel()
	c := Classify("internal/search/vector.go")
	assert.Equal(t, KindPath, c.Kind)
	assert.Equal(t, 2.0, c.Multipliers["path"])
}

func TestClassifySymbolLikeQuery(t *testing.T) {
	t.Parallel()
	for _, q := range []string{"validateToken", "VALIDATE_TOKEN", "validate_token"} {
		c := Classify(q)
		assert.Equalf(t, KindSymbol, c.Kind, "query %q", q)
		assert.Equal(t, 1.5, c.Multipliers["ast"])
	}
}

func TestClassifyNaturalLanguageQuery(t *testing.T) {
	t.Parallel()
	c := Classify("how does the indexer handle deleted files")
	assert.Equal(t, KindNaturalLanguage, c.Kind)
	assert.Equal(t, 1.5, c.Multipliers["vector"])
}

func TestClassifyFallsBackToKeyword(t *testing.T) {
	t.Parallel()
	c := Classify("retry backoff")
	assert.Equal(t, KindKeyword, c.Kind)
	assert.Equal(t, 1.0, c.Multipliers["vector"])
}
