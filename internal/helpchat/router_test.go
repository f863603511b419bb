package helpchat

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/httpx"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

func TestRouterDismissRecordsAnalyticsEvent(t *testing.T) {
	ms := memory.New()
	tracker := NewAnalyticsTracker(ms)
	rt := NewRouter(tracker)

	root := mux.NewRouter()
	rt.Register(root)

	req := httptest.NewRequest(http.MethodPost, "/tips/dashboard_customize/dismiss", strings.NewReader(`{"tip_type":"feature_discovery","route":"/dashboard"}`))
	req = req.WithContext(httpx.WithUserID(context.Background(), "user-1"))
	rec := httptest.NewRecorder()

	root.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	events, err := ms.ListEvents(context.Background(), time.Time{}, EventProactiveTip)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "dashboard_customize", events[0].Details["tip_id"])
	assert.Equal(t, "dismissed", events[0].Details["action"])
}

func TestRouterShownRecordsAnalyticsEvent(t *testing.T) {
	ms := memory.New()
	tracker := NewAnalyticsTracker(ms)
	rt := NewRouter(tracker)

	root := mux.NewRouter()
	rt.Register(root)

	req := httptest.NewRequest(http.MethodPost, "/tips/new_user_walkthrough/shown", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	root.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	events, err := ms.ListEvents(context.Background(), time.Time{}, EventProactiveTip)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "shown", events[0].Details["action"])
}
