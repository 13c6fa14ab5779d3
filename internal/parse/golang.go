package parse

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"strings"
)

// parseGo parses a Go source file with the standard library's own parser —
// justified in DESIGN.md: Go's toolchain is definitionally the correct way
// to parse Go, and no tree-sitter-go grammar is carried by this module.
func parseGo(absPath string) ([]ASTNode, error) {
	src, err := os.ReadFile(absPath)
	if err != nil {
		return nil, nil
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, absPath, src, parser.ParseComments)
	if err != nil {
		return nil, nil
	}
	lines := strings.Split(string(src), "\n")

	var nodes []ASTNode

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			nodes = append(nodes, genDeclNodes(d, fset, lines)...)
		case *ast.FuncDecl:
			nodes = append(nodes, funcDeclNode(d, fset, lines))
		}
	}

	return nodes, nil
}

func genDeclNodes(d *ast.GenDecl, fset *token.FileSet, lines []string) []ASTNode {
	var out []ASTNode
	switch d.Tok {
	case token.IMPORT:
		for _, spec := range d.Specs {
			imp := spec.(*ast.ImportSpec)
			out = append(out, ASTNode{
				Type:      NodeImport,
				LineStart: fset.Position(imp.Pos()).Line,
				LineEnd:   fset.Position(imp.End()).Line,
				Language:  "go",
				Text:      sliceLines(lines, fset.Position(imp.Pos()).Line, fset.Position(imp.End()).Line),
			})
		}
	case token.TYPE:
		for _, spec := range d.Specs {
			ts := spec.(*ast.TypeSpec)
			start, end := declRange(fset, d, spec)
			out = append(out, ASTNode{
				Type:      NodeType_,
				Name:      ts.Name.Name,
				LineStart: start,
				LineEnd:   end,
				Language:  "go",
				Text:      sliceLines(lines, start, end),
				Docstring: docText(d.Doc),
				Exports:   ts.Name.IsExported(),
			})
		}
	case token.CONST, token.VAR:
		for _, spec := range d.Specs {
			vs, ok := spec.(*ast.ValueSpec)
			if !ok || len(vs.Names) == 0 {
				continue
			}
			start, end := declRange(fset, d, spec)
			out = append(out, ASTNode{
				Type:      NodeConstant,
				Name:      vs.Names[0].Name,
				LineStart: start,
				LineEnd:   end,
				Language:  "go",
				Text:      sliceLines(lines, start, end),
				Docstring: docText(d.Doc),
				Exports:   vs.Names[0].IsExported(),
			})
		}
	}
	return out
}

// declRange prefers the individual spec's own span when a GenDecl groups
// several specs in one parenthesized block, falling back to the whole decl
// when there's a single spec.
func declRange(fset *token.FileSet, d *ast.GenDecl, spec ast.Spec) (int, int) {
	if len(d.Specs) == 1 {
		return fset.Position(d.Pos()).Line, fset.Position(d.End()).Line
	}
	return fset.Position(spec.Pos()).Line, fset.Position(spec.End()).Line
}

func funcDeclNode(d *ast.FuncDecl, fset *token.FileSet, lines []string) ASTNode {
	start := fset.Position(d.Pos()).Line
	end := fset.Position(d.End()).Line

	n := ASTNode{
		Type:      NodeFunction,
		Name:      d.Name.Name,
		LineStart: start,
		LineEnd:   end,
		Language:  "go",
		Text:      sliceLines(lines, start, end),
		Docstring: docText(d.Doc),
		Exports:   d.Name.IsExported(),
	}

	if d.Recv != nil && len(d.Recv.List) > 0 {
		n.Type = NodeMethod
		n.Parent = receiverTypeName(d.Recv.List[0].Type)
	}

	if d.Type.Params != nil {
		for _, p := range d.Type.Params.List {
			n.Params = append(n.Params, fieldNames(p))
		}
	}
	if d.Type.Results != nil {
		var rets []string
		for _, r := range d.Type.Results.List {
			rets = append(rets, fieldNames(r))
		}
		n.ReturnType = strings.Join(rets, ", ")
	}

	return n
}

func fieldNames(f *ast.Field) string {
	var names []string
	for _, id := range f.Names {
		names = append(names, id.Name)
	}
	return strings.Join(names, ", ")
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.Ident:
		return t.Name
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	default:
		return ""
	}
}

func docText(g *ast.CommentGroup) string {
	if g == nil {
		return ""
	}
	return strings.TrimSpace(g.Text())
}

func sliceLines(lines []string, start, end int) string {
	if start < 1 {
		start = 1
	}
	if end > len(lines) {
		end = len(lines)
	}
	if start > end || start > len(lines) {
		return ""
	}
	return strings.Join(lines[start-1:end], "\n")
}
