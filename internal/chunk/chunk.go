// Package chunk turns a file's parsed ASTNodes into store-ready chunks:
// collapsing imports, suppressing classes whose methods are chunked
// individually, splitting oversized nodes, and merging runs of small ones.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/ctxengine/ctx/internal/parse"
	"github.com/ctxengine/ctx/internal/store"
)

// Options controls chunk sizing.
type Options struct {
	MaxTokens int
}

// DefaultOptions matches the size the embedder contract is tuned for.
var DefaultOptions = Options{MaxTokens: 500}

const smallChunkThreshold = 50

var unmergeable = map[string]bool{
	"function": true, "method": true, "class": true, "type": true, "import": true,
}

// intermediate is a chunk still in-progress, before id/hash derivation.
type intermediate struct {
	lineStart int
	lineEnd   int
	typ       string
	name      *string
	parent    *string
	text      string
}

// Chunk decomposes one file's AST nodes into store-ready chunks. An empty
// node list yields an empty chunk list.
func Chunk(nodes []parse.ASTNode, filePath string, opts Options) ([]store.ChunkInput, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	if opts.MaxTokens <= 0 {
		opts = DefaultOptions
	}

	sorted := make([]parse.ASTNode, len(nodes))
	copy(sorted, nodes)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].LineStart < sorted[j].LineStart })

	var imports []parse.ASTNode
	var rest []parse.ASTNode
	methodParents := map[string]bool{}
	for _, n := range sorted {
		if n.Type == parse.NodeImport {
			imports = append(imports, n)
			continue
		}
		if n.Type == parse.NodeMethod && n.Parent != "" {
			methodParents[n.Parent] = true
		}
		rest = append(rest, n)
	}

	importTexts := make([]string, 0, len(imports))
	for _, imp := range imports {
		importTexts = append(importTexts, imp.Text)
	}

	var intermediates []intermediate

	if len(imports) > 0 {
		intermediates = append(intermediates, buildImportChunk(imports))
	}

	for _, n := range rest {
		if n.Type == parse.NodeClass && methodParents[n.Name] {
			continue // methods are chunked individually instead
		}
		intermediates = append(intermediates, splitNode(n, opts.MaxTokens)...)
	}

	intermediates = mergeSmall(intermediates, opts.MaxTokens)

	out := make([]store.ChunkInput, 0, len(intermediates))
	for _, im := range intermediates {
		ci := store.ChunkInput{
			ChunkKey:    chunkKey(filePath, im.lineStart, im.lineEnd),
			LineStart:   im.lineStart,
			LineEnd:     im.lineEnd,
			Type:        im.typ,
			Name:        im.name,
			Parent:      im.parent,
			Text:        im.text,
			ContentHash: contentHash(im.text),
		}
		if im.typ != string(parse.NodeImport) {
			ci.Imports = importTexts
		}
		ci.Exported = exportedFromNodes(rest, im)
		out = append(out, ci)
	}
	return out, nil
}

func buildImportChunk(imports []parse.ASTNode) intermediate {
	start, end := imports[0].LineStart, imports[0].LineEnd
	var texts []string
	for _, imp := range imports {
		if imp.LineStart < start {
			start = imp.LineStart
		}
		if imp.LineEnd > end {
			end = imp.LineEnd
		}
		texts = append(texts, imp.Text)
	}
	return intermediate{
		lineStart: start,
		lineEnd:   end,
		typ:       string(parse.NodeImport),
		text:      strings.Join(texts, "\n"),
	}
}

// chunkType aliases the parser's "export" node type to "constant" — the
// chunker never invents a distinct chunk type for it.
func chunkType(t parse.NodeType) string {
	if t == parse.NodeExport {
		return string(parse.NodeConstant)
	}
	return string(t)
}

func splitNode(n parse.ASTNode, maxTokens int) []intermediate {
	typ := chunkType(n.Type)
	var name, parent *string
	if n.Name != "" {
		v := n.Name
		name = &v
	}
	if n.Parent != "" {
		v := n.Parent
		parent = &v
	}

	if estimateTokens(n.Text) <= maxTokens {
		return []intermediate{{
			lineStart: n.LineStart,
			lineEnd:   n.LineEnd,
			typ:       typ,
			name:      name,
			parent:    parent,
			text:      n.Text,
		}}
	}

	lines := strings.Split(n.Text, "\n")
	var out []intermediate
	var acc []string
	accStart := n.LineStart

	flush := func(endLine int) {
		if len(acc) == 0 {
			return
		}
		out = append(out, intermediate{
			lineStart: accStart,
			lineEnd:   endLine,
			typ:       typ,
			name:      name,
			parent:    parent,
			text:      strings.Join(acc, "\n"),
		})
	}

	for i, line := range lines {
		lineNo := n.LineStart + i
		candidate := append(append([]string{}, acc...), line)
		if estimateTokens(strings.Join(candidate, "\n")) >= maxTokens && len(acc) > 1 {
			flush(lineNo - 1)
			acc = []string{line}
			accStart = lineNo
			continue
		}
		acc = candidate
	}
	flush(n.LineStart + len(lines) - 1)

	return out
}

func mergeSmall(in []intermediate, maxTokens int) []intermediate {
	if len(in) == 0 {
		return in
	}
	out := []intermediate{in[0]}
	for _, next := range in[1:] {
		last := &out[len(out)-1]
		if canMerge(*last, next, maxTokens) {
			merged := mergeTwo(*last, next)
			out[len(out)-1] = merged
			continue
		}
		out = append(out, next)
	}
	return out
}

func canMerge(a, b intermediate, maxTokens int) bool {
	if a.typ != b.typ {
		return false
	}
	if unmergeable[a.typ] {
		return false
	}
	if estimateTokens(a.text) >= smallChunkThreshold || estimateTokens(b.text) >= smallChunkThreshold {
		return false
	}
	combined := a.text + "\n" + b.text
	return estimateTokens(combined) <= maxTokens
}

func mergeTwo(a, b intermediate) intermediate {
	name := a.name
	if name == nil {
		name = b.name
	}
	return intermediate{
		lineStart: a.lineStart,
		lineEnd:   b.lineEnd,
		typ:       a.typ,
		name:      name,
		parent:    a.parent,
		text:      a.text + "\n" + b.text,
	}
}

// exportedFromNodes looks up the export flag of the node(s) a chunk derived
// from, by line overlap; split sub-chunks inherit their parent node's flag.
func exportedFromNodes(nodes []parse.ASTNode, im intermediate) bool {
	for _, n := range nodes {
		if chunkType(n.Type) != im.typ {
			continue
		}
		if im.lineStart >= n.LineStart && im.lineStart <= n.LineEnd {
			return n.Exports
		}
	}
	return false
}

func estimateTokens(text string) int {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	est := float64(len(words)) * 1.3
	whole := int(est)
	if float64(whole) < est {
		whole++
	}
	return whole
}

func chunkKey(path string, lineStart, lineEnd int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%d", path, lineStart, lineEnd)))
	return hex.EncodeToString(sum[:])[:16]
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:16]
}
