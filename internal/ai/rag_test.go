package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/logger"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

type fakeContextSource struct {
	counts ContextCounts
	err    error
}

func (f *fakeContextSource) CountContext(_ context.Context) (ContextCounts, error) {
	return f.counts, f.err
}

func newTestRAGEngine(t *testing.T, chat ChatClient) (*Engine, *memory.Store) {
	t.Helper()
	ms := memory.New()
	ctxSource := &fakeContextSource{counts: ContextCounts{Projects: 3, Portfolios: 1, Resources: 5}}
	return NewEngine(ms, ms, ms, chat, ctxSource, logger.NewDefault("test")), ms
}

func TestProcessRAGQueryReturnsResponseWithSources(t *testing.T) {
	engine, ms := newTestRAGEngine(t, &fakeChatClient{completion: "Here is your answer."})

	require.NoError(t, ms.Upsert(context.Background(), domain.Embedding{
		ContentType: "project",
		ContentID:   "p1",
		ContentText: "Project Atlas total budget is $100,000.",
		Vector:      []float32{1, 1, 1, 1},
	}))

	resp, err := engine.ProcessRAGQuery(context.Background(), "What is the budget for Atlas?", "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, "Here is your answer.", resp.Response)
	assert.NotEmpty(t, resp.ConversationID)
	assert.NotEmpty(t, resp.OperationID)
	assert.Len(t, resp.Sources, 1)
	assert.GreaterOrEqual(t, resp.Confidence, 0.3)

	entries := ms.ConversationEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, resp.ConversationID, entries[0].ConversationID)
	assert.Equal(t, resp.OperationID, entries[0].OperationID)
	assert.Equal(t, "Here is your answer.", entries[0].Response)
}

func TestProcessRAGQueryNoSourcesFloorsConfidence(t *testing.T) {
	engine, _ := newTestRAGEngine(t, &fakeChatClient{completion: "I don't have that information."})

	resp, err := engine.ProcessRAGQuery(context.Background(), "What is the budget?", "user-1", "")
	require.NoError(t, err)
	assert.InDelta(t, 0.3, resp.Confidence, 0.001)
}

func TestProcessRAGQueryCompletionFailureReturnsDependencyError(t *testing.T) {
	engine, _ := newTestRAGEngine(t, &fakeChatClient{completeErr: errors.New("model unavailable")})

	_, err := engine.ProcessRAGQuery(context.Background(), "What is the budget?", "user-1", "")
	require.Error(t, err)
}

func TestProcessRAGQueryPreservesConversationID(t *testing.T) {
	engine, _ := newTestRAGEngine(t, &fakeChatClient{completion: "ok"})

	resp, err := engine.ProcessRAGQuery(context.Background(), "hello", "user-1", "conv-123")
	require.NoError(t, err)
	assert.Equal(t, "conv-123", resp.ConversationID)
}
