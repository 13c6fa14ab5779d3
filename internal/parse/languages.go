package parse

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// langSpec is the declarative description of how one tree-sitter grammar's
// node kinds map onto ASTNode. A single generic walker (walker.walk in
// treesitter.go) is driven by this table instead of a per-language switch.
type langSpec struct {
	language func() *sitter.Language

	// kinds maps a grammar node kind to the ASTNode type it represents.
	kinds map[string]NodeType

	// containerKinds are class-like node kinds; a definition nested inside
	// one inherits the container's name as its Parent.
	containerKinds map[string]bool

	// exportWrapperKinds wrap a real declaration as a child and mark it
	// exported (JS/TS "export ..." statements).
	exportWrapperKinds map[string]bool

	// defaultExported decides Exports for a definition not reached through
	// an export wrapper, by naming convention.
	defaultExported func(name string) bool
}

var notUnderscored = func(name string) bool {
	return name != "" && name[0] != '_'
}

var alwaysExported = func(name string) bool { return name != "" }

var languageSpecs = map[string]langSpec{
	"python": {
		language: func() *sitter.Language { return sitter.NewLanguage(python.Language()) },
		kinds: map[string]NodeType{
			"function_definition": NodeFunction,
			"class_definition":    NodeClass,
			"import_statement":    NodeImport,
			"import_from_statement": NodeImport,
		},
		containerKinds:  map[string]bool{"class_definition": true},
		defaultExported: notUnderscored,
	},
	"typescript": {
		language: func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) },
		kinds: map[string]NodeType{
			"function_declaration":    NodeFunction,
			"class_declaration":       NodeClass,
			"interface_declaration":   NodeType_,
			"type_alias_declaration":  NodeType_,
			"method_definition":       NodeMethod,
			"import_statement":        NodeImport,
			"lexical_declaration":     NodeConstant,
			"variable_declaration":    NodeConstant,
		},
		containerKinds:      map[string]bool{"class_declaration": true, "interface_declaration": true},
		exportWrapperKinds:  map[string]bool{"export_statement": true},
		defaultExported:     func(string) bool { return false },
	},
	"javascript": {
		language: func() *sitter.Language { return sitter.NewLanguage(typescript.LanguageTypescript()) },
		kinds: map[string]NodeType{
			"function_declaration": NodeFunction,
			"class_declaration":    NodeClass,
			"method_definition":    NodeMethod,
			"import_statement":     NodeImport,
			"lexical_declaration":  NodeConstant,
			"variable_declaration": NodeConstant,
		},
		containerKinds:     map[string]bool{"class_declaration": true},
		exportWrapperKinds: map[string]bool{"export_statement": true},
		defaultExported:    func(string) bool { return false },
	},
	"java": {
		language: func() *sitter.Language { return sitter.NewLanguage(java.Language()) },
		kinds: map[string]NodeType{
			"class_declaration":     NodeClass,
			"interface_declaration": NodeType_,
			"enum_declaration":      NodeType_,
			"method_declaration":    NodeMethod,
			"constructor_declaration": NodeMethod,
			"import_declaration":   NodeImport,
			"field_declaration":    NodeConstant,
		},
		containerKinds:  map[string]bool{"class_declaration": true, "interface_declaration": true, "enum_declaration": true},
		defaultExported: alwaysExported,
	},
	"ruby": {
		language: func() *sitter.Language { return sitter.NewLanguage(ruby.Language()) },
		kinds: map[string]NodeType{
			"class":  NodeClass,
			"module": NodeClass,
			"method": NodeMethod,
		},
		containerKinds:  map[string]bool{"class": true, "module": true},
		defaultExported: notUnderscored,
	},
	"php": {
		language: func() *sitter.Language { return sitter.NewLanguage(php.LanguagePHP()) },
		kinds: map[string]NodeType{
			"class_declaration":     NodeClass,
			"interface_declaration": NodeType_,
			"trait_declaration":     NodeClass,
			"method_declaration":    NodeMethod,
			"function_definition":   NodeFunction,
			"namespace_use_declaration": NodeImport,
		},
		containerKinds:  map[string]bool{"class_declaration": true, "interface_declaration": true, "trait_declaration": true},
		defaultExported: alwaysExported,
	},
	"c": {
		language: func() *sitter.Language { return sitter.NewLanguage(c.Language()) },
		kinds: map[string]NodeType{
			"function_definition": NodeFunction,
			"struct_specifier":    NodeType_,
			"union_specifier":     NodeType_,
			"enum_specifier":      NodeType_,
			"preproc_include":     NodeImport,
			"declaration":         NodeConstant,
		},
		defaultExported: alwaysExported,
	},
	"rust": {
		language: func() *sitter.Language { return sitter.NewLanguage(rust.Language()) },
		kinds: map[string]NodeType{
			"function_item":  NodeFunction,
			"struct_item":    NodeType_,
			"enum_item":      NodeType_,
			"trait_item":     NodeClass,
			"impl_item":      NodeClass,
			"use_declaration": NodeImport,
			"const_item":     NodeConstant,
			"static_item":    NodeConstant,
		},
		containerKinds:  map[string]bool{"trait_item": true, "impl_item": true},
		defaultExported: func(name string) bool { return true },
	},
}
