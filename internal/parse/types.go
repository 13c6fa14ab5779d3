// Package parse wraps the language-specific concrete-syntax parsers (Go's
// own go/parser plus tree-sitter grammars for the rest) behind one uniform
// ASTNode stream, as described in §4.4 of the specification.
package parse

// NodeType enumerates the syntactic categories the chunker understands.
type NodeType string

const (
	NodeFunction NodeType = "function"
	NodeClass    NodeType = "class"
	NodeMethod   NodeType = "method"
	NodeImport   NodeType = "import"
	NodeExport   NodeType = "export"
	NodeType_    NodeType = "type"
	NodeConstant NodeType = "constant"
)

// ASTNode is one syntactic unit extracted from a source file. Lines are
// 1-based and inclusive; Text is the exact source span.
type ASTNode struct {
	Type       NodeType
	Name       string
	Parent     string
	LineStart  int
	LineEnd    int
	Language   string
	Text       string
	Params     []string
	ReturnType string
	Docstring  string
	Exports    bool
}
