package indexpipeline

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ctxengine/ctx/internal/store"
)

// fileRecord is what ResolveDependencyEdges needs about one indexed file to
// attempt import resolution.
type fileRecord struct {
	Path       string
	Language   string
	ImportText string  // concatenated text of the file's collapsed import chunk, if any
	ChunkIDs   []int64 // all chunk row ids for this file, in chunk order
}

var quotedModule = regexp.MustCompile(`["']([^"']+)["']`)
var javaImport = regexp.MustCompile(`import\s+(?:static\s+)?([\w.]+)`)

// ResolveDependencyEdges is a deliberately simple, best-effort import
// resolver: per §9's design note, this core does no language-specific
// semantic analysis beyond what the syntactic parser exposes. It matches
// each file's import text against the basenames of other files sharing the
// same language, and records one representative chunk-to-chunk edge per
// resolved import.
func ResolveDependencyEdges(st *store.Store, files []fileRecord) error {
	byBasename := map[string][]fileRecord{}
	for _, f := range files {
		base := strings.TrimSuffix(filepath.Base(f.Path), filepath.Ext(f.Path))
		key := f.Language + ":" + base
		byBasename[key] = append(byBasename[key], f)
	}

	for _, f := range files {
		if f.ImportText == "" || len(f.ChunkIDs) == 0 {
			continue
		}
		source := f.ChunkIDs[0]
		for _, module := range extractModules(f.ImportText) {
			base := lastSegment(module)
			target, ok := resolveTarget(byBasename, f.Language, base, f.Path)
			if !ok {
				continue
			}
			if err := st.InsertDep(source, target, "imports"); err != nil {
				return err
			}
		}
	}
	return nil
}

func extractModules(importText string) []string {
	var modules []string
	seen := map[string]bool{}
	for _, m := range quotedModule.FindAllStringSubmatch(importText, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			modules = append(modules, m[1])
		}
	}
	for _, m := range javaImport.FindAllStringSubmatch(importText, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			modules = append(modules, m[1])
		}
	}
	return modules
}

func lastSegment(module string) string {
	module = strings.ReplaceAll(module, ".", "/")
	parts := strings.Split(module, "/")
	return parts[len(parts)-1]
}

func resolveTarget(byBasename map[string][]fileRecord, language, base, selfPath string) (int64, bool) {
	candidates := byBasename[language+":"+base]
	for _, c := range candidates {
		if c.Path == selfPath || len(c.ChunkIDs) == 0 {
			continue
		}
		return c.ChunkIDs[0], true
	}
	return 0, false
}
