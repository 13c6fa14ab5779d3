// Package fuse implements Reciprocal Rank Fusion over the five search
// strategies plus the post-fusion re-ranking adjustments described in
// §4.10 of the specification: path boost, import/test/small-snippet
// deprioritization, public-API boost, and file-diversity diminishing
// returns.
package fuse

import (
	"sort"

	"github.com/ctxengine/ctx/internal/search"
)

// rrfK is the RRF rank-discount constant; standard across implementations.
const rrfK = 60.0

// Weighted is one strategy's contribution to a fusion pass: its ranked
// results and the weight (base weight × classifier multiplier) to apply.
type Weighted struct {
	Strategy string
	Weight   float64
	Results  []search.Result
}

// RRF merges weighted per-strategy result lists by Reciprocal Rank Fusion:
// a chunk's accumulated score is Σ weight·1/(K+rank) over every strategy
// that returned it, rank being 1-based within that strategy's list. The
// first-seen Result record (by strategy iteration order) is kept as the
// representative; ties in strategy contribution do not create duplicate
// entries. Results are sorted by score desc, optionally truncated to
// limit (limit<=0 means no truncation), and re-normalized so the top score
// is exactly 1.0 (all-zero inputs stay zero).
func RRF(inputs []Weighted, limit int) []search.Result {
	type accumulated struct {
		result search.Result
		score  float64
	}
	order := make([]int64, 0)
	byID := make(map[int64]*accumulated)

	for _, w := range inputs {
		for i, r := range w.Results {
			rank := i + 1
			contribution := w.Weight * (1.0 / (rrfK + float64(rank)))
			if acc, ok := byID[r.ChunkID]; ok {
				acc.score += contribution
				continue
			}
			acc := &accumulated{result: r, score: contribution}
			byID[r.ChunkID] = acc
			order = append(order, r.ChunkID)
		}
	}

	merged := make([]search.Result, 0, len(order))
	for _, id := range order {
		acc := byID[id]
		res := acc.result
		res.Score = acc.score
		merged = append(merged, res)
	}

	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Score > merged[j].Score })

	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}

	return renormalize(merged)
}

// renormalize rescales scores so the top result is exactly 1.0. An all-zero
// (or empty) input is returned unchanged.
func renormalize(results []search.Result) []search.Result {
	if len(results) == 0 {
		return results
	}
	top := results[0].Score
	for _, r := range results {
		if r.Score > top {
			top = r.Score
		}
	}
	if top <= 0 {
		return results
	}
	for i := range results {
		results[i].Score /= top
	}
	return results
}
