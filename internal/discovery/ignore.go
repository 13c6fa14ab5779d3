package discovery

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// builtinIgnore lists directories and patterns every project skips
// regardless of .gitignore/.ctxignore contents.
var builtinIgnore = []string{
	".git", ".ctx", ".hg", ".svn",
	"node_modules", "vendor", "dist", "build", "target", "__pycache__",
	".venv", "venv", ".next", ".nuxt",
	"*.lock",
	"*.png", "*.jpg", "*.jpeg", "*.gif", "*.bmp", "*.ico", "*.webp",
	"*.pdf", "*.zip", "*.tar", "*.gz", "*.so", "*.dylib", "*.dll", "*.exe",
	"*.woff", "*.woff2", "*.ttf", "*.eot",
}

// Matcher decides whether a project-relative path should be skipped.
type Matcher struct {
	patterns []glob.Glob
}

// NewMatcher compiles the built-in ignore list plus the contents of
// .gitignore and .ctxignore at root (if present) plus any caller-supplied
// extra patterns, following gitignore comment/blank-line conventions.
func NewMatcher(root string, extra []string) (*Matcher, error) {
	var raw []string
	raw = append(raw, builtinIgnore...)
	raw = append(raw, readIgnoreFile(filepath.Join(root, ".gitignore"))...)
	raw = append(raw, readIgnoreFile(filepath.Join(root, ".ctxignore"))...)
	raw = append(raw, extra...)

	m := &Matcher{}
	for _, pat := range raw {
		pat = normalizePattern(pat)
		g, err := glob.Compile(pat, '/')
		if err != nil {
			continue // an unparsable pattern is skipped rather than failing discovery
		}
		m.patterns = append(m.patterns, g)
	}
	return m, nil
}

// normalizePattern turns a bare name like "node_modules" into a pattern that
// matches it at the top level or at any depth ("{node_modules,**/node_modules}")
// while leaving already-anchored or wildcarded patterns alone.
func normalizePattern(pat string) string {
	pat = strings.TrimSuffix(pat, "/")
	if strings.ContainsAny(pat, "*?[") || strings.Contains(pat, "/") {
		return pat
	}
	return "{" + pat + ",**/" + pat + "}"
}

func readIgnoreFile(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// Match reports whether relPath (slash-separated, relative to the project
// root) should be ignored. It checks the path both as given and with a
// trailing "/**" so whole-directory patterns like "build/**" match the
// directory itself during the walk.
func (m *Matcher) Match(relPath string) bool {
	relPath = filepath.ToSlash(relPath)
	for _, g := range m.patterns {
		if g.Match(relPath) || g.Match(relPath+"/**") {
			return true
		}
	}
	return false
}
