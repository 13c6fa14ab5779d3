package indexpipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ctxengine/ctx/internal/changes"
	"github.com/ctxengine/ctx/internal/chunk"
	"github.com/ctxengine/ctx/internal/config"
	"github.com/ctxengine/ctx/internal/discovery"
	"github.com/ctxengine/ctx/internal/embed"
	"github.com/ctxengine/ctx/internal/parse"
	"github.com/ctxengine/ctx/internal/store"
)

// Index runs one full indexing pass over root: bootstrap, discovery, change
// detection, parse/chunk/store for every added or modified file, deletion
// of removed files, and (unless skipped) embedding of newly created chunks.
// embedder may be nil only when opts.SkipEmbedding is true.
func Index(ctx context.Context, root string, opts Options, cfg *config.Config, embedder embed.Embedder) (*Stats, error) {
	start := time.Now()

	if err := EnsureProjectState(root); err != nil {
		return nil, fmt.Errorf("indexpipeline: bootstrap: %w", err)
	}

	dbPath := filepath.Join(root, ".ctx", "index.db")
	st, err := store.Open(dbPath, cfg.Embedder.Dimensions)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if err := enforceEmbedderGate(st, cfg); err != nil {
		return nil, err
	}

	discovered, err := discovery.Discover(root, discovery.Options{FollowSymlinks: true})
	if err != nil {
		return nil, fmt.Errorf("indexpipeline: discovery: %w", err)
	}

	changeSet, err := changes.Compute(ctx, discovered, st)
	if err != nil {
		return nil, fmt.Errorf("indexpipeline: change detection: %w", err)
	}

	for _, p := range changeSet.Deleted {
		if err := st.DeleteFile(p); err != nil {
			return nil, fmt.Errorf("indexpipeline: delete file %s: %w", p, err)
		}
	}
	for _, p := range changeSet.Unchanged {
		_ = st.TouchFile(p)
	}

	byPath := map[string]discovery.File{}
	for _, f := range discovered {
		byPath[f.RelPath] = f
	}

	toProcess := append(append([]string{}, changeSet.Added...), changeSet.Modified...)
	sort.Strings(toProcess)

	stats := &Stats{
		FilesDiscovered: len(discovered),
		FilesAdded:      len(changeSet.Added),
		FilesModified:   len(changeSet.Modified),
		FilesDeleted:    len(changeSet.Deleted),
		FilesUnchanged:  len(changeSet.Unchanged),
		ByLanguage:      map[string]int{},
	}

	type pendingChunk struct {
		chunkID int64
		ci      *chunkWithText
	}
	var toEmbed []pendingChunk
	var depFiles []fileRecord

	// Parse and chunk every file concurrently — both are pure CPU/IO work
	// with no store interaction, bounded the same way internal/changes
	// bounds its hashing pass.
	parsed := make([][]store.ChunkInput, len(toProcess))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, relPath := range toProcess {
		i, relPath := i, relPath
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			df := byPath[relPath]
			absPath := filepath.Join(root, relPath)

			nodes, err := parse.Parse(absPath, df.Language)
			if err != nil {
				log.Printf("indexpipeline: parse failed for %s: %v", relPath, err)
				nodes = nil
			}

			chunks, err := chunk.Chunk(nodes, relPath, chunk.DefaultOptions)
			if err != nil {
				log.Printf("indexpipeline: chunk failed for %s: %v", relPath, err)
				return nil
			}
			parsed[i] = chunks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("indexpipeline: parse/chunk: %w", err)
	}

	for i, relPath := range toProcess {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		df := byPath[relPath]
		chunks := parsed[i]

		if existing, err := st.GetFile(relPath); err == nil {
			if err := st.DeleteChunksByFile(existing.ID); err != nil {
				return nil, fmt.Errorf("indexpipeline: clear old chunks for %s: %w", relPath, err)
			}
		} else if err != store.ErrNotFound {
			return nil, fmt.Errorf("indexpipeline: lookup %s: %w", relPath, err)
		}

		var fileID int64
		var chunkIDs []int64
		err = st.Transaction(func(tx *store.Tx) error {
			var txErr error
			fileID, txErr = tx.UpsertFile(relPath, df.Language, changeSet.Hashes[relPath], df.Size)
			if txErr != nil {
				return txErr
			}
			chunkIDs, txErr = tx.InsertChunks(fileID, chunks)
			return txErr
		})
		if err != nil {
			return nil, fmt.Errorf("indexpipeline: store %s: %w", relPath, err)
		}

		stats.ChunksCreated += len(chunks)
		stats.ByLanguage[df.Language] += len(chunks)

		rec := fileRecord{Path: relPath, Language: df.Language, ChunkIDs: chunkIDs}
		for j, c := range chunks {
			if c.Type == string(parse.NodeImport) {
				rec.ImportText = c.Text
			}
			if !opts.SkipEmbedding {
				toEmbed = append(toEmbed, pendingChunk{
					chunkID: chunkIDs[j],
					ci:      &chunkWithText{filePath: relPath, chunk: c},
				})
			}
		}
		depFiles = append(depFiles, rec)
	}

	if err := ResolveDependencyEdges(st, depFiles); err != nil {
		return nil, fmt.Errorf("indexpipeline: dependency edges: %w", err)
	}

	if !opts.SkipEmbedding && len(toEmbed) > 0 {
		if embedder == nil {
			return nil, fmt.Errorf("indexpipeline: embedding requested but no embedder configured")
		}
		texts := make([]string, len(toEmbed))
		for i, pc := range toEmbed {
			texts[i] = embeddingText(pc.ci)
		}
		vectors, err := embedder.Embed(ctx, texts, opts.Progress)
		if err != nil {
			return nil, fmt.Errorf("indexpipeline: embed: %w", err)
		}
		err = st.Transaction(func(tx *store.Tx) error {
			for i, pc := range toEmbed {
				if err := tx.InsertVector(pc.chunkID, vectors[i]); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("indexpipeline: insert vectors: %w", err)
		}
		stats.VectorsCreated = len(toEmbed)
	}

	stats.Duration = time.Since(start)
	return stats, nil
}

type chunkWithText struct {
	filePath string
	chunk    store.ChunkInput
}

// embeddingText builds the "{rel_path}\n{parent?}\n{text}" template, per the
// indexing pipeline's embedding-text contract.
func embeddingText(c *chunkWithText) string {
	s := c.filePath + "\n"
	if c.chunk.Parent != nil {
		s += *c.chunk.Parent + "\n"
	}
	return s + c.chunk.Text
}

func enforceEmbedderGate(st *store.Store, cfg *config.Config) error {
	desc, err := st.IndexEmbedder()
	if err != nil {
		return err
	}
	current := store.EmbedderDescriptor{
		Provider:   cfg.Embedder.Provider,
		Model:      cfg.Embedder.Model,
		Dimensions: cfg.Embedder.Dimensions,
	}
	if desc == nil {
		stats, err := st.Stats()
		if err != nil {
			return err
		}
		if stats.FileCount > 0 || stats.ChunkCount > 0 || stats.VectorCount > 0 {
			return fmt.Errorf("%w: configured %+v", store.ErrEmbedderUnset, current)
		}
		return st.SetIndexEmbedder(current)
	}
	if *desc != current {
		return fmt.Errorf("%w: index built with %+v, configured %+v", store.ErrEmbedderMismatch, *desc, current)
	}
	return nil
}
