package helpchat

import (
	"context"

	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// Event types recorded by AnalyticsTracker, grounded on the original's
// analytics_tracker.EventType enum.
const (
	EventHelpQuery    = "help_query"
	EventHelpFeedback = "help_feedback"
	EventProactiveTip = "help_proactive_tip"
)

// AnalyticsTracker records help-chat usage as append-only audit events. It
// reuses the platform's existing audit event log rather than a dedicated
// analytics table.
type AnalyticsTracker struct {
	audit store.AuditStore
}

// NewAnalyticsTracker constructs an AnalyticsTracker over audit.
func NewAnalyticsTracker(audit store.AuditStore) *AnalyticsTracker {
	return &AnalyticsTracker{audit: audit}
}

// TrackQuery records one answered help-chat query.
func (t *AnalyticsTracker) TrackQuery(ctx context.Context, userID, query, response string, responseTimeMs int64, confidence float64, route, sessionID string) error {
	return t.audit.RecordEvent(ctx, EventHelpQuery, userID, map[string]interface{}{
		"query":            query,
		"response_preview": previewText(response, 200),
		"response_time_ms": responseTimeMs,
		"confidence":       confidence,
		"route":            route,
		"session_id":       sessionID,
	})
}

// TrackFeedback records user feedback on a previously answered query.
func (t *AnalyticsTracker) TrackFeedback(ctx context.Context, userID, messageID string, rating int, feedbackText, feedbackType string) error {
	return t.audit.RecordEvent(ctx, EventHelpFeedback, userID, map[string]interface{}{
		"message_id":    messageID,
		"rating":        rating,
		"feedback_text": feedbackText,
		"feedback_type": feedbackType,
	})
}

// TrackTip records a proactive tip being shown or dismissed. action is
// "shown" or "dismissed".
func (t *AnalyticsTracker) TrackTip(ctx context.Context, userID, tipID, tipType, action, route string) error {
	return t.audit.RecordEvent(ctx, EventProactiveTip, userID, map[string]interface{}{
		"tip_id":   tipID,
		"tip_type": tipType,
		"action":   action,
		"route":    route,
	})
}

func previewText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
