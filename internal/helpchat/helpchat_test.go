package helpchat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/ai"
	"github.com/Stefan/ppm-saas-sub001/internal/cache"
	"github.com/Stefan/ppm-saas-sub001/internal/logger"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

type fakeContextSource struct{}

func (fakeContextSource) CountContext(_ context.Context) (ai.ContextCounts, error) {
	return ai.ContextCounts{Projects: 1}, nil
}

func newTestService(t *testing.T, chat ai.ChatClient, degraded func() bool) (*Service, *memory.Store) {
	t.Helper()
	ms := memory.New()
	engine := ai.NewEngine(ms, ms, ms, chat, fakeContextSource{}, logger.NewDefault("test"))
	svc := New(engine, cache.NewRAGResponseCache(), NewTipsEngine(), NewChatTranslator(chat), NewAnalyticsTracker(ms), logger.NewDefault("test"), degraded)
	return svc, ms
}

func TestServiceQueryReturnsLiveResponseAndCachesIt(t *testing.T) {
	svc, _ := newTestService(t, &fakeChatClient{completion: "Open the budget tab to set a threshold."}, nil)

	req := QueryRequest{Query: "how do I set a budget threshold", UserID: "user-1", Context: PageContext{Route: "/financial"}}
	resp, err := svc.Query(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, resp.IsCached)
	assert.Equal(t, "Open the budget tab to set a threshold.", resp.Response)

	cached, err := svc.Query(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, cached.IsCached)
	assert.Equal(t, resp.Response, cached.Response)
}

func TestServiceQueryUsesFallbackWhenDegraded(t *testing.T) {
	svc, _ := newTestService(t, &fakeChatClient{completion: "should not be reached"}, func() bool { return true })

	resp, err := svc.Query(context.Background(), QueryRequest{Query: "help", UserID: "user-1"})
	require.NoError(t, err)
	assert.True(t, resp.IsFallback)
	assert.NotEmpty(t, resp.SuggestedActions)
}

func TestServiceQueryFallsBackOnDependencyFailure(t *testing.T) {
	svc, _ := newTestService(t, &fakeChatClient{err: errors.New("model unavailable")}, nil)

	resp, err := svc.Query(context.Background(), QueryRequest{Query: "help", UserID: "user-1"})
	require.NoError(t, err)
	assert.True(t, resp.IsFallback)
}

func TestServiceQueryIncludesProactiveTips(t *testing.T) {
	svc, _ := newTestService(t, &fakeChatClient{completion: "answer"}, nil)

	req := QueryRequest{
		Query: "how do I start", UserID: "user-1",
		Context:              PageContext{Route: "/dashboard"},
		IncludeProactiveTips: true,
		Behavior:             UserBehavior{SessionCount: 1},
	}
	resp, err := svc.Query(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ProactiveTips)
}

func TestServiceQueryDistinctCacheKeysPerLanguage(t *testing.T) {
	svc, _ := newTestService(t, &fakeChatClient{completion: "answer"}, nil)

	base := QueryRequest{Query: "help", UserID: "user-1", Context: PageContext{Route: "/dashboard"}}
	en := base
	en.Language = "en"
	de := base
	de.Language = "de"

	respEn, err := svc.Query(context.Background(), en)
	require.NoError(t, err)
	respDe, err := svc.Query(context.Background(), de)
	require.NoError(t, err)

	assert.False(t, respDe.IsCached)
	_ = respEn
}

func TestCacheKeyDiffersByContext(t *testing.T) {
	a := cacheKey("q", "u", PageContext{Route: "/dashboard"}, "en")
	b := cacheKey("q", "u", PageContext{Route: "/project"}, "en")
	assert.NotEqual(t, a, b)
}

func TestSuggestedQueriesMatchesRouteBucket(t *testing.T) {
	qs := suggestedQueries("/financial/variance")
	assert.Contains(t, qs[0], "budget")
}

func TestSuggestedQueriesDefaultsForUnknownRoute(t *testing.T) {
	qs := suggestedQueries("/some/unrelated/page")
	assert.Len(t, qs, 3)
}
