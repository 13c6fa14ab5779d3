// Package classify assigns a query to one of four kinds and derives the
// per-strategy weight multipliers fusion applies on top of configured base
// weights.
package classify

import (
	"regexp"
	"strings"
)

// Kind is the classifier's verdict for one query.
type Kind string

const (
	KindPath            Kind = "path"
	KindSymbol          Kind = "symbol"
	KindNaturalLanguage Kind = "natural_language"
	KindKeyword         Kind = "keyword"
)

// Classification is the classifier's result: a kind plus per-strategy
// weight multipliers, to be applied on top of configured base weights.
type Classification struct {
	Kind        Kind
	Multipliers map[string]float64
}

var sourceExtension = regexp.MustCompile(`\.(go|ts|tsx|js|jsx|py|rs|c|cpp|h|hpp|java|rb|php)$`)

var camelOrPascal = regexp.MustCompile(`^[A-Za-z][a-zA-Z0-9]*$`)
var hasUpperAndLower = regexp.MustCompile(`[a-z]`)
var hasUpper = regexp.MustCompile(`[A-Z]`)
var snakeCase = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)+$`)
var upperSnake = regexp.MustCompile(`^[A-Z][A-Z0-9]*(_[A-Z0-9]+)+$`)

var questionWords = map[string]bool{
	"how": true, "what": true, "where": true, "why": true, "when": true,
	"which": true, "show": true, "explain": true, "find": true, "list": true,
}

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "to": true,
	"of": true, "in": true, "for": true, "and": true, "or": true, "with": true,
}

// Classify assigns a query to one kind and returns the multipliers that
// apply to each strategy's configured base weight.
func Classify(query string) Classification {
	q := strings.TrimSpace(query)

	if strings.Contains(q, "/") || sourceExtension.MatchString(q) {
		return Classification{Kind: KindPath, Multipliers: map[string]float64{
			"path": 2.0, "ast": 0.5, "fts": 1.0, "vector": 1.0, "dependency": 1.0,
		}}
	}

	if isSymbolLike(q) {
		return Classification{Kind: KindSymbol, Multipliers: map[string]float64{
			"ast": 1.5, "vector": 0.5, "fts": 1.0, "path": 1.0, "dependency": 1.0,
		}}
	}

	if isNaturalLanguage(q) {
		return Classification{Kind: KindNaturalLanguage, Multipliers: map[string]float64{
			"vector": 1.5, "path": 1.2, "ast": 0.7, "fts": 1.0, "dependency": 1.0,
		}}
	}

	return Classification{Kind: KindKeyword, Multipliers: map[string]float64{
		"vector": 1.0, "fts": 1.0, "ast": 1.0, "path": 1.0, "dependency": 1.0,
	}}
}

func isSymbolLike(q string) bool {
	if strings.Contains(q, " ") {
		return false
	}
	if snakeCase.MatchString(q) || upperSnake.MatchString(q) {
		return true
	}
	if camelOrPascal.MatchString(q) && hasUpper.MatchString(q) && hasUpperAndLower.MatchString(q) {
		return true
	}
	return false
}

func isNaturalLanguage(q string) bool {
	words := strings.Fields(strings.ToLower(q))
	if len(words) == 0 {
		return false
	}
	if questionWords[words[0]] {
		return true
	}
	for _, w := range words {
		if questionWords[w] {
			return true
		}
	}
	if len(words) >= 4 {
		for _, w := range words {
			if stopWords[w] {
				return true
			}
		}
	}
	return false
}
