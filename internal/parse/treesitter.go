package parse

import (
	"os"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

var fallbackIdentifierKinds = []string{
	"identifier", "type_identifier", "property_identifier",
	"constant", "name",
}

// parseTreeSitter runs the grammar registered for language over absPath and
// flattens the result into ASTNodes using the declarative table in
// languages.go. Unsupported languages and unparsable files both yield an
// empty, non-error result.
func parseTreeSitter(absPath, language string) ([]ASTNode, error) {
	spec, ok := languageSpecs[language]
	if !ok {
		return nil, nil
	}

	source, err := os.ReadFile(absPath)
	if err != nil {
		return nil, nil
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(spec.language())

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	lines := strings.Split(string(source), "\n")

	w := &walker{spec: spec, source: source, lines: lines, language: language}
	w.walk(tree.RootNode(), "")
	return w.nodes, nil
}

type walker struct {
	spec     langSpec
	source   []byte
	lines    []string
	language string
	nodes    []ASTNode
}

func (w *walker) walk(node *sitter.Node, parent string) {
	if node == nil {
		return
	}

	var prevComment *sitter.Node
	count := int(node.ChildCount())
	for i := 0; i < count; i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		kind := child.Kind()

		if kind == "comment" {
			prevComment = child
			continue
		}

		exported := false
		actual := child
		if w.spec.exportWrapperKinds[kind] {
			exported = true
			if inner := firstNonTrivialChild(child); inner != nil {
				actual = inner
				kind = actual.Kind()
			}
		}

		nodeType, tracked := w.spec.kinds[kind]
		if !tracked {
			w.walk(child, parent)
			prevComment = nil
			continue
		}

		name := w.identifierFor(actual)
		if !exported && w.spec.defaultExported != nil {
			exported = w.spec.defaultExported(name)
		}

		start := int(actual.StartPosition().Row) + 1
		end := int(actual.EndPosition().Row) + 1

		n := ASTNode{
			Type:      nodeType,
			Name:      name,
			Parent:    parent,
			LineStart: start,
			LineEnd:   end,
			Language:  w.language,
			Text:      sliceLines(w.lines, start, end),
			Exports:   exported,
		}
		if prevComment != nil && adjacentAbove(prevComment, actual) {
			n.Docstring = trimCommentMarkers(string(w.source[prevComment.StartByte():prevComment.EndByte()]))
		}
		w.nodes = append(w.nodes, n)
		prevComment = nil

		nextParent := parent
		if w.spec.containerKinds[kind] {
			nextParent = name
		}
		w.walk(actual, nextParent)
	}
}

func (w *walker) identifierFor(node *sitter.Node) string {
	if named := node.ChildByFieldName("name"); named != nil {
		return string(w.source[named.StartByte():named.EndByte()])
	}
	if typ := node.ChildByFieldName("type"); typ != nil {
		return string(w.source[typ.StartByte():typ.EndByte()])
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		for _, k := range fallbackIdentifierKinds {
			if child.Kind() == k {
				return string(w.source[child.StartByte():child.EndByte()])
			}
		}
	}
	return ""
}

func firstNonTrivialChild(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(uint(i))
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "export", "default", ";", "comment":
			continue
		}
		return child
	}
	return nil
}

func adjacentAbove(comment, node *sitter.Node) bool {
	commentEnd := int(comment.EndPosition().Row) + 1
	nodeStart := int(node.StartPosition().Row) + 1
	return nodeStart-commentEnd <= 1
}

func trimCommentMarkers(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "/**")
	text = strings.TrimPrefix(text, "/*")
	text = strings.TrimSuffix(text, "*/")
	text = strings.TrimPrefix(text, "#")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "//")
		line = strings.TrimPrefix(line, "*")
		line = strings.TrimPrefix(line, "#")
		out = append(out, strings.TrimSpace(line))
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
