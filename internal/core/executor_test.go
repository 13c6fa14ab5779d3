package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ctxengine/ctx/internal/search"
)

// fakePlan records every Execute call it receives and returns a fixed
// result set, standing in for an external LLM-driven planner.
type fakePlan struct {
	calls [][]string
	limit int
	out   []search.Result
	err   error
}

func (p *fakePlan) Execute(ctx context.Context, strategies []string, limit int) ([]search.Result, error) {
	p.calls = append(p.calls, strategies)
	p.limit = limit
	return p.out, p.err
}

func TestNaturalLanguageQueryDelegatesToPlan(t *testing.T) {
	t.Parallel()
	root := initProject(t)

	want := []search.Result{{ChunkID: 1, FilePath: "auth.go"}}
	plan := &fakePlan{out: want}

	got, err := NaturalLanguageQuery(context.Background(), root, "validateToken", NLOptions{Limit: 7, Plan: plan})
	require.NoError(t, err)
	assert.Equal(t, want, got)
	require.Len(t, plan.calls, 1)
	assert.Nil(t, plan.calls[0])
	assert.Equal(t, 7, plan.limit)
}

func TestNaturalLanguageQueryWrapsPlanError(t *testing.T) {
	t.Parallel()
	root := initProject(t)

	plan := &fakePlan{err: assert.AnError}
	_, err := NaturalLanguageQuery(context.Background(), root, "validateToken", NLOptions{Plan: plan})
	require.Error(t, err)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, KindSearchFailed, ce.Kind)
}

func TestNaturalLanguageQueryUsesConfiguredLimitWhenUnset(t *testing.T) {
	t.Parallel()
	root := initProject(t)
	plan := &fakePlan{}

	_, err := NaturalLanguageQuery(context.Background(), root, "validateToken", NLOptions{Plan: plan})
	require.NoError(t, err)
	cfg, err := ReadConfig(root)
	require.NoError(t, err)
	assert.Equal(t, cfg.Search.DefaultLimit, plan.limit)
}

func TestBoundExecutorRunsRealQueryPipeline(t *testing.T) {
	t.Parallel()
	root := initProject(t)

	exec := NewExecutor(root, "validateToken", "")
	results, err := exec.Execute(context.Background(), []string{"ast"}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "auth.go", results[0].FilePath)
}
