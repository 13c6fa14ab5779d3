package parse

// Parse extracts ASTNodes from the file at absPath. Unsupported languages
// and unparsable source both return an empty, non-error result so a single
// bad file never fails an indexing run.
func Parse(absPath, language string) ([]ASTNode, error) {
	if language == "go" {
		return parseGo(absPath)
	}
	return parseTreeSitter(absPath, language)
}

// Supported reports whether language has a registered parser.
func Supported(language string) bool {
	if language == "go" {
		return true
	}
	_, ok := languageSpecs[language]
	return ok
}
