package helpchat

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Stefan/ppm-saas-sub001/internal/httpx"
)

// Router is the isolated path group for asynchronous tip-interaction
// callbacks (dismiss, and the "shown" beacon a client fires once a tip
// renders) — kept separate from the main query/feedback handlers since
// these are fire-and-forget webhook-style calls, not part of the
// request/response chat flow, grounded on the original's
// POST /api/ai/help/tips/dismiss endpoint.
type Router struct {
	analytics *AnalyticsTracker
}

// NewRouter builds a Router. Dismissal state itself is persisted by the
// caller (spec: user_profiles.preferences.dismissed_tips) and fed back in
// via QueryRequest.DismissedTips on the next query — this router only
// records the dismissal/shown event.
func NewRouter(analytics *AnalyticsTracker) *Router {
	return &Router{analytics: analytics}
}

// Register mounts the tip-callback routes onto parent under /tips.
func (rt *Router) Register(parent *mux.Router) {
	sub := parent.PathPrefix("/tips").Subrouter()
	sub.HandleFunc("/{tipID}/dismiss", rt.handleDismiss).Methods(http.MethodPost)
	sub.HandleFunc("/{tipID}/shown", rt.handleShown).Methods(http.MethodPost)
}

type tipCallbackRequest struct {
	TipType string `json:"tip_type"`
	Route   string `json:"route"`
}

// handleDismiss records a tip as dismissed for the calling user, so future
// Generate calls (once the caller persists the returned ID into
// QueryRequest.DismissedTips) stop surfacing it.
func (rt *Router) handleDismiss(w http.ResponseWriter, r *http.Request) {
	rt.trackCallback(w, r, "dismissed")
}

// handleShown is the beacon a client fires once a proactive tip actually
// rendered on screen, distinct from the "shown" event Service.Query already
// records at generation time — this one confirms the client received it.
func (rt *Router) handleShown(w http.ResponseWriter, r *http.Request) {
	rt.trackCallback(w, r, "shown")
}

func (rt *Router) trackCallback(w http.ResponseWriter, r *http.Request, action string) {
	ctx := r.Context()
	tipID := mux.Vars(r)["tipID"]
	userID := httpx.GetUserID(ctx)

	var body tipCallbackRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}

	if err := rt.analytics.TrackTip(ctx, userID, tipID, body.TipType, action, body.Route); err != nil {
		httpx.WriteErrorResponse(w, r, http.StatusInternalServerError, "tip_tracking_failed", "failed to record tip event", nil)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
