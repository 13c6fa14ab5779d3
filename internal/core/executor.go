package core

import (
	"context"

	"github.com/ctxengine/ctx/internal/search"
)

// SearchExecutor lets an external planner — typically an LLM-driven query
// refiner running outside this module — run the fused query pipeline
// against a caller-chosen strategy subset and limit, without holding any
// store or embedder state itself. Planning (which strategies to try, and in
// what order) is deliberately left to the caller; core only executes.
type SearchExecutor interface {
	Execute(ctx context.Context, strategies []string, limit int) ([]search.Result, error)
}

// boundExecutor implements SearchExecutor by closing over one (root, query)
// pair, letting a planner re-run the same question through different
// strategy subsets without re-specifying it each time.
type boundExecutor struct {
	root     string
	query    string
	language string
}

// NewExecutor returns a SearchExecutor bound to one project and query, for
// handing to an external natural-language planner.
func NewExecutor(root, query, language string) SearchExecutor {
	return &boundExecutor{root: root, query: query, language: language}
}

func (b *boundExecutor) Execute(ctx context.Context, strategies []string, limit int) ([]search.Result, error) {
	return Query(ctx, b.root, b.query, QueryOptions{
		Limit:      limit,
		Strategies: strategies,
		Language:   b.language,
	})
}
