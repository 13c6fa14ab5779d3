package changes

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxengine/ctx/internal/discovery"
	"github.com/ctxengine/ctx/internal/store"
)

// fakeHasher is an in-memory fileHasher double, keyed by relative path.
type fakeHasher struct {
	files map[string]string // path -> hash
}

func (f *fakeHasher) GetFile(path string) (*store.File, error) {
	h, ok := f.files[path]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.File{Path: path, Hash: h}, nil
}

func (f *fakeHasher) AllFilePaths() ([]string, error) {
	paths := make([]string, 0, len(f.files))
	for p := range f.files {
		paths = append(paths, p)
	}
	return paths, nil
}

func writeFixture(t *testing.T, dir, name, contents string) discovery.File {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return discovery.File{RelPath: name, AbsPath: path, Language: "go"}
}

func TestComputePartitionsAddedModifiedUnchangedDeleted(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	unchanged := writeFixture(t, dir, "unchanged.go", "package a\n")
	modified := writeFixture(t, dir, "modified.go", "package b // new\n")
	added := writeFixture(t, dir, "added.go", "package c\n")

	unchangedHash, err := hashFile(unchanged.AbsPath)
	require.NoError(t, err)

	hasher := &fakeHasher{files: map[string]string{
		"unchanged.go": unchangedHash,
		"modified.go":  "stale-hash",
		"deleted.go":   "whatever",
	}}

	set, err := Compute(context.Background(), []discovery.File{unchanged, modified, added}, hasher)
	require.NoError(t, err)

	assert.Equal(t, []string{"added.go"}, set.Added)
	assert.Equal(t, []string{"modified.go"}, set.Modified)
	assert.Equal(t, []string{"unchanged.go"}, set.Unchanged)
	assert.Equal(t, []string{"deleted.go"}, set.Deleted)

	assert.Contains(t, set.Hashes, "added.go")
	assert.Contains(t, set.Hashes, "modified.go")
	assert.NotContains(t, set.Hashes, "unchanged.go")
}

func TestComputeWithEmptyStoreMarksEverythingAdded(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	a := writeFixture(t, dir, "a.go", "package a\n")
	b := writeFixture(t, dir, "b.go", "package b\n")

	hasher := &fakeHasher{files: map[string]string{}}
	set, err := Compute(context.Background(), []discovery.File{a, b}, hasher)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"a.go", "b.go"}, set.Added)
	assert.Empty(t, set.Modified)
	assert.Empty(t, set.Deleted)
	assert.Empty(t, set.Unchanged)
}
