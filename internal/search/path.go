package search

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ctxengine/ctx/internal/store"
)

// PathGlob converts pattern to a regex (** = any, * = within a segment,
// ? = one non-slash character) and gathers chunks of every matching file.
func PathGlob(ctx context.Context, st *store.Store, pattern string, k int) ([]Result, error) {
	re, err := globToRegex(pattern)
	if err != nil {
		return nil, fmt.Errorf("search: compile glob %q: %w", pattern, err)
	}

	paths, err := st.AllFilePaths()
	if err != nil {
		return nil, err
	}

	var out []Result
	for _, p := range paths {
		if !re.MatchString(p) {
			continue
		}
		chunks, err := chunksForPath(st, p)
		if err != nil {
			return nil, err
		}
		for _, c := range chunks {
			out = append(out, FromChunk(c, 1.0))
			if len(out) >= k {
				return out, nil
			}
		}
	}
	return out, nil
}

// PathKeyword scores every stored path against term and gathers chunks of
// matched files, carrying the path's score.
func PathKeyword(ctx context.Context, st *store.Store, term string, k int) ([]Result, error) {
	paths, err := st.AllFilePaths()
	if err != nil {
		return nil, err
	}

	type scored struct {
		path  string
		score float64
	}
	var matches []scored
	lowerTerm := strings.ToLower(term)
	for _, p := range paths {
		if s, ok := pathKeywordScore(p, term, lowerTerm); ok {
			matches = append(matches, scored{p, s})
		}
	}

	var out []Result
	for _, m := range matches {
		chunks, err := chunksForPath(st, m.path)
		if err != nil {
			return nil, err
		}
		for _, c := range chunks {
			out = append(out, FromChunk(c, m.score))
			if len(out) >= k {
				return out, nil
			}
		}
	}
	return out, nil
}

func pathKeywordScore(path, term, lowerTerm string) (float64, bool) {
	base := filepath.Base(path)
	nameNoExt := strings.TrimSuffix(base, filepath.Ext(base))
	segments := strings.Split(path, "/")

	for _, seg := range segments {
		if seg == term {
			return 1.0, true
		}
	}
	if nameNoExt == term {
		return 0.9, true
	}
	if strings.Contains(strings.ToLower(path), lowerTerm) {
		return 0.7, true
	}
	return 0, false
}

func chunksForPath(st *store.Store, path string) ([]*store.Chunk, error) {
	f, err := st.GetFile(path)
	if err == store.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return st.ChunksByFile(f.ID)
}

// globToRegex compiles a path glob into an anchored regex: "**" matches any
// number of path segments, "*" matches within one segment, "?" matches
// exactly one non-slash character, and other regex metacharacters are
// escaped literally.
func globToRegex(pattern string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("^")
	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		switch runes[i] {
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		default:
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}
