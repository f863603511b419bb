package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

// fakeChatClient is a deterministic stand-in for a real vendor client: it
// hashes input text into a short vector and echoes a fixed completion.
type fakeChatClient struct {
	completion   string
	completeErr  error
	embedErr     error
}

func (f *fakeChatClient) Embed(_ context.Context, text string) ([]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	vec := make([]float32, 4)
	for i, r := range text {
		vec[i%4] += float32(r % 7)
	}
	return vec, nil
}

func (f *fakeChatClient) Complete(_ context.Context, _, _ string) (string, error) {
	if f.completeErr != nil {
		return "", f.completeErr
	}
	return f.completion, nil
}

func TestIndexProjectUpsertsEmbedding(t *testing.T) {
	ms := memory.New()
	idx := NewIndexer(ms, &fakeChatClient{})

	err := idx.IndexProject(context.Background(), domain.Project{ID: "p1", Name: "Atlas", Status: domain.ProjectActive})
	require.NoError(t, err)

	matches, err := ms.SearchSimilar(context.Background(), []float32{1, 1, 1, 1}, []string{"project"}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "p1", matches[0].ContentID)
}

func TestDeleteEmbeddingRemovesEntry(t *testing.T) {
	ms := memory.New()
	idx := NewIndexer(ms, &fakeChatClient{})
	require.NoError(t, idx.IndexResource(context.Background(), domain.Resource{ID: "r1", Name: "Ada", Skills: []string{"Go"}}))

	require.NoError(t, idx.DeleteEmbedding(context.Background(), "resource", "r1"))

	matches, err := ms.SearchSimilar(context.Background(), []float32{1, 1, 1, 1}, []string{"resource"}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
