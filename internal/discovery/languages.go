package discovery

import (
	"path/filepath"
	"strings"
)

// extToLanguage maps a file extension (including the leading dot) to the
// language tag recorded on File.Language and later passed to the parser
// registry.
var extToLanguage = map[string]string{
	".go":    "go",
	".ts":    "typescript",
	".tsx":   "typescript",
	".js":    "javascript",
	".jsx":   "javascript",
	".mjs":   "javascript",
	".cjs":   "javascript",
	".py":    "python",
	".rs":    "rust",
	".c":     "c",
	".h":     "c",
	".cpp":   "cpp",
	".cc":    "cpp",
	".hpp":   "cpp",
	".java":  "java",
	".rb":    "ruby",
	".php":   "php",
	".md":    "markdown",
	".rst":   "rst",
	".json":  "json",
	".yaml":  "yaml",
	".yml":   "yaml",
	".toml":  "toml",
}

// LanguageForPath resolves a path's language tag by extension. Dotfiles with
// no further extension (e.g. ".env") are treated as their own key. An
// unknown extension reports ok=false, signaling the caller to skip the file.
func LanguageForPath(path string) (lang string, ok bool) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)

	if ext == "" || ext == base {
		// A dotfile like ".env" has Ext()==base==".env"; treat the
		// whole basename as the extension key.
		if strings.HasPrefix(base, ".") && strings.Count(base, ".") == 1 {
			lang, ok = extToLanguage[base]
			return lang, ok
		}
		return "", false
	}

	lang, ok = extToLanguage[strings.ToLower(ext)]
	return lang, ok
}
