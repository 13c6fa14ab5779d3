package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestStore opens a fresh file-backed store in t.TempDir() with the given
// vector dimension, registering cleanup. vec0 virtual tables are not
// reliably shareable across bare :memory: connections under the cgo driver,
// so tests use a temp file rather than an in-memory database, mirroring the
// teacher's NewTestDBFile rather than its default NewTestDB.
func NewTestStore(t testing.TB, dim int) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "index.db")
	st, err := Open(path, dim)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}
