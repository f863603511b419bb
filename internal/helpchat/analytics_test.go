package helpchat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

func TestAnalyticsTrackerRecordsQuery(t *testing.T) {
	ms := memory.New()
	tracker := NewAnalyticsTracker(ms)

	require.NoError(t, tracker.TrackQuery(context.Background(), "user-1", "how do I set a budget", "Open the budget tab", 120, 0.82, "/financial", "sess-1"))

	events, err := ms.ListEvents(context.Background(), time.Time{}, EventHelpQuery)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "user-1", events[0].ActorID)
	assert.Equal(t, "/financial", events[0].Details["route"])
}

func TestAnalyticsTrackerRecordsTipShownAndDismissed(t *testing.T) {
	ms := memory.New()
	tracker := NewAnalyticsTracker(ms)

	require.NoError(t, tracker.TrackTip(context.Background(), "user-1", "dashboard_customize", string(TipTypeFeatureDiscovery), "shown", "/dashboard"))
	require.NoError(t, tracker.TrackTip(context.Background(), "user-1", "dashboard_customize", string(TipTypeFeatureDiscovery), "dismissed", "/dashboard"))

	events, err := ms.ListEvents(context.Background(), time.Time{}, EventProactiveTip)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "shown", events[0].Details["action"])
	assert.Equal(t, "dismissed", events[1].Details["action"])
}

func TestAnalyticsTrackerRecordsFeedback(t *testing.T) {
	ms := memory.New()
	tracker := NewAnalyticsTracker(ms)

	require.NoError(t, tracker.TrackFeedback(context.Background(), "user-1", "msg-1", 5, "very helpful", "helpful"))

	events, err := ms.ListEvents(context.Background(), time.Time{}, EventHelpFeedback)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, 5, events[0].Details["rating"])
}
