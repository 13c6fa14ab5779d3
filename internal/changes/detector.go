// Package changes computes the added/modified/deleted/unchanged partition
// of a discovery pass against the store's recorded file hashes.
package changes

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ctxengine/ctx/internal/discovery"
	"github.com/ctxengine/ctx/internal/store"
)

// Set is the partition of a discovery pass relative to the store.
type Set struct {
	Added     []string
	Modified  []string
	Deleted   []string
	Unchanged []string
	Hashes    map[string]string // path -> sha256 hex, for Added ∪ Modified
	Duration  time.Duration
}

// fileHasher is satisfied by *store.Store; narrowed for testability.
type fileHasher interface {
	GetFile(path string) (*store.File, error)
	AllFilePaths() ([]string, error)
}

// Compute hashes every discovered file (in parallel, bounded by a worker
// pool since hashing is I/O-bound) and diffs the result against st.
func Compute(ctx context.Context, discovered []discovery.File, st fileHasher) (*Set, error) {
	start := time.Now()

	hashes := make([]string, len(discovered))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, f := range discovered {
		i, f := i, f
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			h, err := hashFile(f.AbsPath)
			if err != nil {
				return fmt.Errorf("changes: hash %s: %w", f.RelPath, err)
			}
			hashes[i] = h
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	set := &Set{Hashes: map[string]string{}}

	for i, f := range discovered {
		seen[f.RelPath] = true
		h := hashes[i]
		existing, err := st.GetFile(f.RelPath)
		switch {
		case err == store.ErrNotFound:
			set.Added = append(set.Added, f.RelPath)
			set.Hashes[f.RelPath] = h
		case err != nil:
			return nil, fmt.Errorf("changes: get file %s: %w", f.RelPath, err)
		case existing.Hash != h:
			set.Modified = append(set.Modified, f.RelPath)
			set.Hashes[f.RelPath] = h
		default:
			set.Unchanged = append(set.Unchanged, f.RelPath)
		}
	}

	stored, err := st.AllFilePaths()
	if err != nil {
		return nil, fmt.Errorf("changes: list stored paths: %w", err)
	}
	for _, p := range stored {
		if !seen[p] {
			set.Deleted = append(set.Deleted, p)
		}
	}

	sort.Strings(set.Added)
	sort.Strings(set.Modified)
	sort.Strings(set.Deleted)
	sort.Strings(set.Unchanged)

	set.Duration = time.Since(start)
	return set, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
