package graph

import (
	"context"

	"go.uber.org/zap"

	"graphmem/pkg/logger"
)

// Unsupported is the compatibility surface for capabilities the consuming
// framework's storage contract names but this store does not implement:
// workflow runs, scores, evaluations and traces. Every method returns a
// well-defined empty default so callers see "nothing stored" rather than an
// error, and the core storage contract stays free of speculative fields.
type Unsupported struct {
	logger *zap.Logger
}

// NewUnsupported creates the stub surface
func NewUnsupported() *Unsupported {
	return &Unsupported{logger: logger.Get()}
}

func (u *Unsupported) note(operation string) {
	u.logger.Debug("Operation not supported by the graph store", zap.String("operation", operation))
}

// WorkflowRuns always reports zero stored runs
func (u *Unsupported) WorkflowRuns(ctx context.Context) ([]map[string]any, error) {
	u.note("workflowRuns")
	return []map[string]any{}, nil
}

// WorkflowRunByID always reports "not found"
func (u *Unsupported) WorkflowRunByID(ctx context.Context, runID string) (map[string]any, error) {
	u.note("workflowRunById")
	return nil, nil
}

// SaveWorkflowSnapshot accepts and discards the snapshot
func (u *Unsupported) SaveWorkflowSnapshot(ctx context.Context, runID string, snapshot map[string]any) error {
	u.note("saveWorkflowSnapshot")
	return nil
}

// Scores always reports zero stored scores
func (u *Unsupported) Scores(ctx context.Context) ([]map[string]any, error) {
	u.note("scores")
	return []map[string]any{}, nil
}

// SaveScore accepts and discards the score
func (u *Unsupported) SaveScore(ctx context.Context, score map[string]any) error {
	u.note("saveScore")
	return nil
}

// Evals always reports zero stored evaluations
func (u *Unsupported) Evals(ctx context.Context, agentName string) ([]map[string]any, error) {
	u.note("evals")
	return []map[string]any{}, nil
}

// Traces always reports zero stored traces
func (u *Unsupported) Traces(ctx context.Context) ([]map[string]any, error) {
	u.note("traces")
	return []map[string]any{}, nil
}

// SaveTrace accepts and discards the trace
func (u *Unsupported) SaveTrace(ctx context.Context, trace map[string]any) error {
	u.note("saveTrace")
	return nil
}
