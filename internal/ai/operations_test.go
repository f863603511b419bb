package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

func TestRecordFeedbackAndSummary(t *testing.T) {
	ms := memory.New()
	log := NewOperationLog(ms)
	ctx := context.Background()

	require.NoError(t, ms.LogOperation(ctx, domain.AIOperationRecord{
		OperationID:   "op-1",
		OperationType: "rag_query",
		Success:       true,
		Confidence:    0.8,
		ResponseTime:  200 * time.Millisecond,
		Timestamp:     time.Now(),
	}))

	require.NoError(t, log.RecordFeedback(ctx, domain.Feedback{
		OperationID:  "op-1",
		UserID:       "user-1",
		Rating:       5,
		FeedbackType: "thumbs_up",
	}))

	summary, err := log.Summary(ctx, time.Now().Add(-time.Hour), "rag_query")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Count)
	assert.Equal(t, 1.0, summary.SuccessRate)
}
