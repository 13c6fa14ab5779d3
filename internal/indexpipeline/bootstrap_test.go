package indexpipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureProjectStateCreatesStateDirAndGitignore(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	require.NoError(t, EnsureProjectState(root))

	info, err := os.Stat(filepath.Join(root, ".ctx"))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	contents, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(contents), ".ctx/")
}

func TestEnsureProjectStateAppendsToExistingGitignoreOnce(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("node_modules/\n"), 0o644))

	require.NoError(t, EnsureProjectState(root))
	require.NoError(t, EnsureProjectState(root))

	contents, err := os.ReadFile(filepath.Join(root, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, 1, countOccurrences(string(contents), ".ctx/"))
	assert.Contains(t, string(contents), "node_modules/")
}

func countOccurrences(haystack, needle string) int {
	count := 0
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			count++
		}
	}
	return count
}
