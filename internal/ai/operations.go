package ai

import (
	"context"
	"time"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// OperationLog is a thin facade over AIOperationStore for the pieces of the
// contract that don't belong to a specific agent (RAG, validator, A/B): raw
// user feedback capture and the rolling usage/quality summary surfaced on
// the AI operations dashboard. Permission gating for who may call these
// happens at the HTTP transport layer, consistent with every other service
// package in this tree.
type OperationLog struct {
	ops store.AIOperationStore
}

// NewOperationLog constructs an OperationLog.
func NewOperationLog(ops store.AIOperationStore) *OperationLog {
	return &OperationLog{ops: ops}
}

// RecordFeedback stores a user's rating/comment against a prior AI
// operation (spec §4.6's feedback loop).
func (l *OperationLog) RecordFeedback(ctx context.Context, fb domain.Feedback) error {
	if fb.Timestamp.IsZero() {
		fb.Timestamp = time.Now()
	}
	return l.ops.LogFeedback(ctx, fb)
}

// Summary reports aggregate usage and quality for operations of the given
// type (all types when empty) logged since `since`.
func (l *OperationLog) Summary(ctx context.Context, since time.Time, operationType string) (store.AIOperationSummary, error) {
	return l.ops.Summary(ctx, since, operationType)
}
