package search

import (
	"context"

	"github.com/ctxengine/ctx/internal/store"
)

// SymbolQuery narrows an AST/symbol lookup.
type SymbolQuery struct {
	Name      string
	Type      string
	Parent    string
	Language  string
	MatchMode store.MatchMode
}

// AST dispatches a structured symbol lookup, scoring exact matches highest.
func AST(ctx context.Context, st *store.Store, q SymbolQuery, k int) ([]Result, error) {
	chunks, err := st.SearchChunks(store.SearchChunksFilter{
		Name:     q.Name,
		NameMode: q.MatchMode,
		Type:     q.Type,
		Parent:   q.Parent,
		Language: q.Language,
	}, k)
	if err != nil {
		return nil, err
	}

	score := matchModeScore(q.MatchMode)
	out := make([]Result, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, FromChunk(c, score))
	}
	return out, nil
}

func matchModeScore(mode store.MatchMode) float64 {
	switch mode {
	case store.MatchPrefix:
		return 0.8
	case store.MatchContains:
		return 0.5
	default:
		return 1.0
	}
}
