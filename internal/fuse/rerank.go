package fuse

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/ctxengine/ctx/internal/search"
)

const (
	pathBoostDirExact  = 1.5
	pathBoostNameExact = 1.4
	pathBoostSubstring = 1.2

	importPenalty      = 0.5
	testPenalty        = 0.65
	smallSnippetFactor = 0.75
	publicAPIBoost     = 1.12
)

var diversityFactor = []float64{1.0, 0.9, 0.8, 0.7} // index 0..3, index>=3 clamps to 0.7

var testFilenamePattern = regexp.MustCompile(`(?i)\.(test|spec)\.(js|mjs|cjs|ts|tsx|jsx)$`)

// Rerank runs the fused query pipeline: RRF merge at 3×limit over-fetch,
// then the six post-fusion adjustments in §4.10, file-diversity diminishing
// returns, and a final sort/truncate/renormalize to limit.
func Rerank(query string, inputs []Weighted, limit int) []search.Result {
	overfetch := limit * 3
	if overfetch <= 0 {
		overfetch = limit
	}
	results := RRF(inputs, overfetch)
	if len(results) == 0 {
		return results
	}

	boostTerms := extractBoostTerms(query)
	applyPathBoost(results, boostTerms)
	applyImportPenalty(results)
	applyTestPenalty(results)
	applySmallSnippetPenalty(results)
	applyPublicAPIBoost(results)
	applyFileDiversity(results)

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return renormalize(results)
}

// extractBoostTerms splits query on whitespace, dropping tokens shorter
// than two characters.
func extractBoostTerms(query string) []string {
	var terms []string
	for _, tok := range strings.Fields(query) {
		if len(tok) >= 2 {
			terms = append(terms, tok)
		}
	}
	return terms
}

func applyPathBoost(results []search.Result, terms []string) {
	if len(terms) == 0 {
		return
	}
	for i := range results {
		best := 1.0
		path := results[i].FilePath
		segments := strings.Split(path, "/")
		base := filepath.Base(path)
		nameNoExt := strings.TrimSuffix(base, filepath.Ext(base))
		lowerPath := strings.ToLower(path)

		for _, term := range terms {
			for _, seg := range segments {
				if seg == term {
					best = maxF(best, pathBoostDirExact)
				}
			}
			if nameNoExt == term {
				best = maxF(best, pathBoostNameExact)
			}
			if strings.Contains(lowerPath, strings.ToLower(term)) {
				best = maxF(best, pathBoostSubstring)
			}
		}
		results[i].Score *= best
	}
}

func applyImportPenalty(results []search.Result) {
	if !anyPositiveExcept(results, func(r search.Result) bool { return r.Type == "import" }) {
		return
	}
	for i := range results {
		if results[i].Type == "import" {
			results[i].Score *= importPenalty
		}
	}
}

func applyTestPenalty(results []search.Result) {
	if !anyPositiveExcept(results, func(r search.Result) bool { return isTestPath(r.FilePath) }) {
		return
	}
	for i := range results {
		if isTestPath(results[i].FilePath) {
			results[i].Score *= testPenalty
		}
	}
}

func applySmallSnippetPenalty(results []search.Result) {
	isSmall := func(r search.Result) bool { return lineCount(r) <= 3 }
	if !anyPositiveExcept(results, isSmall) {
		return
	}
	for i := range results {
		if isSmall(results[i]) {
			results[i].Score *= smallSnippetFactor
		}
	}
}

func applyPublicAPIBoost(results []search.Result) {
	for i := range results {
		if isPublicAPI(results[i]) {
			results[i].Score *= publicAPIBoost
		}
	}
}

func applyFileDiversity(results []search.Result) {
	sorted := make([]int, len(results))
	for i := range sorted {
		sorted[i] = i
	}
	sort.SliceStable(sorted, func(a, b int) bool { return results[sorted[a]].Score > results[sorted[b]].Score })

	seen := map[string]int{}
	for _, idx := range sorted {
		path := results[idx].FilePath
		n := seen[path]
		seen[path] = n + 1
		results[idx].Score *= diversityFactorFor(n)
	}
}

func diversityFactorFor(occurrenceIndex int) float64 {
	if occurrenceIndex >= len(diversityFactor) {
		return diversityFactor[len(diversityFactor)-1]
	}
	return diversityFactor[occurrenceIndex]
}

// anyPositiveExcept reports whether any result NOT matched by exclude has a
// positive score — the gate condition every deprioritization rule checks
// before penalizing the matched subset.
func anyPositiveExcept(results []search.Result, exclude func(search.Result) bool) bool {
	for _, r := range results {
		if !exclude(r) && r.Score > 0 {
			return true
		}
	}
	return false
}

func isTestPath(path string) bool {
	for _, seg := range strings.Split(path, "/") {
		if seg == "tests" || seg == "__tests__" {
			return true
		}
	}
	return testFilenamePattern.MatchString(path)
}

func lineCount(r search.Result) int {
	return r.LineEnd - r.LineStart + 1
}

func isPublicAPI(r search.Result) bool {
	if r.Exported {
		return true
	}
	trimmed := strings.TrimLeft(r.Text, " \t\n\r")
	return strings.HasPrefix(strings.ToLower(trimmed), "export ")
}

func maxF(a, b float64) float64 {
	if b > a {
		return b
	}
	return a
}
