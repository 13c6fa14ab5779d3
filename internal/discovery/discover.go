// Package discovery walks a project root and classifies files by language,
// applying the built-in ignore list plus .gitignore/.ctxignore patterns.
package discovery

import (
	"log"
	"os"
	"path/filepath"
	"sort"
)

// File is one discovered source file.
type File struct {
	RelPath      string
	AbsPath      string
	Language     string
	Size         int64
	LastModified int64 // unix seconds
}

// Options controls a Discover call.
type Options struct {
	// ExtraIgnore patterns are added on top of the built-in list and any
	// .gitignore/.ctxignore found at root.
	ExtraIgnore []string
	// FollowSymlinks is consulted only for directory entries that are
	// symlinks. filepath.WalkDir reports a symlinked directory as a
	// non-directory and does not descend into it, so symlinked directories
	// are not traversed whatever this is set to; a symlink whose name has a
	// recognized extension is listed like a regular file.
	FollowSymlinks bool
}

// Discover recursively walks root, returning every non-ignored file with a
// recognized language, sorted by relative path.
func Discover(root string, opts Options) ([]File, error) {
	matcher, err := NewMatcher(root, opts.ExtraIgnore)
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{}
	var files []File

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			log.Printf("discovery: skip %s: %v", path, walkErr)
			return nil
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		if d.IsDir() {
			if matcher.Match(rel) {
				return filepath.SkipDir
			}
			if d.Type()&os.ModeSymlink != 0 {
				if !opts.FollowSymlinks {
					return filepath.SkipDir
				}
				real, err := filepath.EvalSymlinks(path)
				if err != nil {
					return filepath.SkipDir
				}
				if visited[real] {
					return filepath.SkipDir
				}
				visited[real] = true
			}
			return nil
		}

		if matcher.Match(rel) {
			return nil
		}

		lang, ok := LanguageForPath(path)
		if !ok {
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil {
			log.Printf("discovery: stat failed for %s: %v", path, statErr)
			return nil
		}

		files = append(files, File{
			RelPath:      filepath.ToSlash(rel),
			AbsPath:      path,
			Language:     lang,
			Size:         info.Size(),
			LastModified: info.ModTime().Unix(),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}
