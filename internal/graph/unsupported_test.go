package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnsupported_EmptyDefaults(t *testing.T) {
	ctx := context.Background()
	u := NewUnsupported()

	runs, err := u.WorkflowRuns(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	run, err := u.WorkflowRunByID(ctx, "run-1")
	assert.NoError(t, err)
	assert.Nil(t, run)

	assert.NoError(t, u.SaveWorkflowSnapshot(ctx, "run-1", map[string]any{"state": "done"}))

	scores, err := u.Scores(ctx)
	assert.NoError(t, err)
	assert.Empty(t, scores)
	assert.NoError(t, u.SaveScore(ctx, map[string]any{"value": 1}))

	evals, err := u.Evals(ctx, "agent")
	assert.NoError(t, err)
	assert.Empty(t, evals)

	traces, err := u.Traces(ctx)
	assert.NoError(t, err)
	assert.Empty(t, traces)
	assert.NoError(t, u.SaveTrace(ctx, map[string]any{"span": "x"}))
}
