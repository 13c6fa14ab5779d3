// Package watch runs a debounced filesystem watch loop that triggers
// incremental re-indexing on source changes, grounded on the teacher's
// internal/indexer/watcher.go.
package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ctxengine/ctx/internal/config"
	"github.com/ctxengine/ctx/internal/discovery"
	"github.com/ctxengine/ctx/internal/indexpipeline"
)

// ReindexFunc runs one incremental index pass and reports its stats.
type ReindexFunc func(ctx context.Context) (*indexpipeline.Stats, error)

// Watcher watches a project root for file changes and triggers a debounced
// incremental reindex.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	matcher  *discovery.Matcher
	debounce time.Duration
	reindex  ReindexFunc
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// New builds a Watcher rooted at root, ignoring whatever cfg.Watch.Ignored
// (plus the built-in/gitignore rules) excludes, debounced by
// cfg.Watch.DebounceMs.
func New(root string, cfg *config.Config, reindex ReindexFunc) (*Watcher, error) {
	matcher, err := discovery.NewMatcher(root, cfg.Watch.Ignored)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		root:     root,
		watcher:  fsw,
		matcher:  matcher,
		debounce: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
		reindex:  reindex,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	if err := w.addDirectoriesRecursively(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start runs the watch loop in a new goroutine.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop signals the watch loop to exit and blocks until it does.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		<-w.doneCh
		w.watcher.Close()
	})
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var debounceTimer *time.Timer
	reindexCh := make(chan struct{}, 1)
	changed := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			stopTimer(debounceTimer)
			return

		case <-w.stopCh:
			stopTimer(debounceTimer)
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.shouldProcessEvent(event) {
				continue
			}

			rel, _ := filepath.Rel(w.root, event.Name)
			changed[rel] = true

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if w.shouldWatchDirectory(event.Name) {
						if err := w.addDirectoriesRecursively(event.Name); err != nil {
							log.Printf("watch: failed to watch new directory %s: %v", event.Name, err)
						}
					}
				}
			}

			stopTimer(debounceTimer)
			debounceTimer = time.AfterFunc(w.debounce, func() {
				select {
				case reindexCh <- struct{}{}:
				default:
				}
			})

		case <-reindexCh:
			w.triggerReindex(ctx, changed)
			changed = map[string]bool{}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch: error: %v", err)
		}
	}
}

func stopTimer(t *time.Timer) {
	if t == nil {
		return
	}
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
}

func (w *Watcher) triggerReindex(ctx context.Context, changed map[string]bool) {
	if len(changed) == 0 {
		return
	}
	log.Printf("watch: reindexing due to changes in %d file(s)...", len(changed))
	start := time.Now()

	stats, err := w.reindex(ctx)
	if err != nil {
		log.Printf("watch: incremental reindex failed: %v", err)
		return
	}
	log.Printf("watch: reindex complete in %v (%d files changed, %d chunks created)",
		time.Since(start), stats.FilesAdded+stats.FilesModified+stats.FilesDeleted, stats.ChunksCreated)
}

func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return false
	}
	return !w.matcher.Match(filepath.ToSlash(rel))
}

func (w *Watcher) shouldWatchDirectory(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return !w.matcher.Match(filepath.ToSlash(rel))
}

func (w *Watcher) addDirectoriesRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Printf("watch: error accessing %s: %v", path, err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && !w.shouldWatchDirectory(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("watch: failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}
