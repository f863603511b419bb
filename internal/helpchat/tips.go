package helpchat

import (
	"time"
)

// TipType categorizes a proactive tip, grounded on the original's
// ProactiveTipsEngine.TipType enum.
type TipType string

const (
	TipTypeFeatureDiscovery TipType = "feature_discovery"
	TipTypeWorkflowGuidance TipType = "workflow_guidance"
	TipTypeBestPractice     TipType = "best_practice"
	TipTypeEfficiencyHint   TipType = "efficiency_hint"
	TipTypeWarning          TipType = "warning"
)

// TipPriority ranks a tip for ordering when several are eligible at once.
type TipPriority string

const (
	TipPriorityLow    TipPriority = "low"
	TipPriorityMedium TipPriority = "medium"
	TipPriorityHigh   TipPriority = "high"
)

var priorityRank = map[TipPriority]int{
	TipPriorityHigh:   0,
	TipPriorityMedium: 1,
	TipPriorityLow:    2,
}

// Tip is one proactive suggestion surfaced alongside a help-chat response or
// the standalone tips endpoint.
type Tip struct {
	TipID          string
	TipType        TipType
	Title          string
	Content        string
	Priority       TipPriority
	TriggerContext []string
	Actions        []QuickAction
	Dismissible    bool
	ShowOnce       bool
}

// UserBehavior merges the original's UserBehavior and UserBehaviorPattern
// shapes: everything the tips engine reasons about to decide which tips are
// relevant to the calling user right now.
type UserBehavior struct {
	UserID          string
	RecentPages     []string
	TimeOnPage      int
	FrequentQueries []string
	UserLevel       string
	SessionCount    int
	LastLogin       time.Time
	FeatureUsage    map[string]interface{}
	ErrorPatterns   []string
}

// TipsEngine generates proactive tips from page context and recent user
// behavior, grounded on the original's ProactiveTipsEngine.generate_proactive_tips.
type TipsEngine struct {
	rules []tipRule
}

type tipRule struct {
	routeBucket string
	tip         Tip
}

// NewTipsEngine builds a TipsEngine preloaded with the same tip catalogue as
// the original's rule-based generator (no model call involved — tips are
// deterministic per route/role/behavior, unlike the RAG-backed chat answers).
func NewTipsEngine() *TipsEngine {
	return &TipsEngine{rules: defaultTipRules()}
}

// Generate returns the tips relevant to ctx and behavior, filtering out any
// tip ID present in dismissedTips, ordered by priority (high first).
func (e *TipsEngine) Generate(ctx PageContext, behavior UserBehavior, dismissedTips []string) []Tip {
	dismissed := make(map[string]bool, len(dismissedTips))
	for _, id := range dismissedTips {
		dismissed[id] = true
	}

	bucket := routeBucket(ctx.Route)
	out := make([]Tip, 0, 4)
	for _, rule := range e.rules {
		if rule.routeBucket != "" && rule.routeBucket != bucket {
			continue
		}
		if dismissed[rule.tip.TipID] {
			continue
		}
		if !e.appliesTo(rule.tip, behavior) {
			continue
		}
		out = append(out, rule.tip)
	}

	sortByPriority(out)
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

// appliesTo applies the per-tip behavior gates the original encodes ad hoc
// inside generate_proactive_tips (e.g. only nudge new users, only warn on
// repeated errors).
func (e *TipsEngine) appliesTo(tip Tip, behavior UserBehavior) bool {
	switch tip.TipID {
	case "new_user_walkthrough":
		return behavior.SessionCount <= 1
	case "repeated_error_help":
		return len(behavior.ErrorPatterns) > 0
	case "power_user_shortcuts":
		return behavior.UserLevel == "advanced" || behavior.SessionCount > 20
	default:
		return true
	}
}

func sortByPriority(tips []Tip) {
	for i := 1; i < len(tips); i++ {
		j := i
		for j > 0 && priorityRank[tips[j].Priority] < priorityRank[tips[j-1].Priority] {
			tips[j], tips[j-1] = tips[j-1], tips[j]
			j--
		}
	}
}

func defaultTipRules() []tipRule {
	return []tipRule{
		{routeBucket: "", tip: Tip{
			TipID: "new_user_walkthrough", TipType: TipTypeWorkflowGuidance,
			Title:   "New here? Take the guided tour",
			Content: "Walk through creating your first project and portfolio in under five minutes.",
			Priority: TipPriorityHigh, Dismissible: true, ShowOnce: true,
			Actions: []QuickAction{{ID: "start_tour", Label: "Start tour", Action: "navigate", Target: "/onboarding"}},
		}},
		{routeBucket: "", tip: Tip{
			TipID: "repeated_error_help", TipType: TipTypeWarning,
			Title:   "Running into the same error?",
			Content: "We noticed repeated errors on this page. Open the troubleshooting guide or ask the help assistant directly.",
			Priority: TipPriorityHigh, Dismissible: true,
			Actions: []QuickAction{{ID: "troubleshoot", Label: "Troubleshooting guide", Action: "navigate", Target: "/help/troubleshooting"}},
		}},
		{routeBucket: "dashboard", tip: Tip{
			TipID: "dashboard_customize", TipType: TipTypeFeatureDiscovery,
			Title:   "Customize your dashboard",
			Content: "Drag widgets to reorder them, or add new ones from the widget library.",
			Priority: TipPriorityMedium, Dismissible: true,
			Actions: []QuickAction{{ID: "widget_library", Label: "Open widget library", Action: "open_panel", Target: "widget-library"}},
		}},
		{routeBucket: "project", tip: Tip{
			TipID: "project_wbs_tip", TipType: TipTypeBestPractice,
			Title:   "Break work down before you schedule it",
			Content: "Projects with a WBS defined before scheduling see fewer downstream variance alerts.",
			Priority: TipPriorityMedium, Dismissible: true,
			Actions: []QuickAction{{ID: "open_wbs", Label: "Open WBS editor", Action: "navigate", Target: "/wbs"}},
		}},
		{routeBucket: "portfolio", tip: Tip{
			TipID: "portfolio_comparison", TipType: TipTypeFeatureDiscovery,
			Title:   "Compare projects side by side",
			Content: "Use the portfolio comparison view to rank projects by variance and resource risk.",
			Priority: TipPriorityLow, Dismissible: true,
			Actions: []QuickAction{{ID: "open_comparison", Label: "Compare projects", Action: "navigate", Target: "/portfolio/compare"}},
		}},
		{routeBucket: "resource", tip: Tip{
			TipID: "resource_overallocation", TipType: TipTypeWarning,
			Title:   "Check for overallocated resources",
			Content: "The resource heatmap highlights people booked above capacity this sprint.",
			Priority: TipPriorityMedium, Dismissible: true,
			Actions: []QuickAction{{ID: "open_heatmap", Label: "Open heatmap", Action: "navigate", Target: "/resources/heatmap"}},
		}},
		{routeBucket: "financial", tip: Tip{
			TipID: "financial_variance_tip", TipType: TipTypeEfficiencyHint,
			Title:   "Set a variance threshold",
			Content: "Configure an alert threshold so budget variance surfaces automatically instead of requiring a manual check.",
			Priority: TipPriorityMedium, Dismissible: true,
			Actions: []QuickAction{{ID: "open_alerts", Label: "Configure alerts", Action: "navigate", Target: "/financial/alerts"}},
		}},
		{routeBucket: "", tip: Tip{
			TipID: "power_user_shortcuts", TipType: TipTypeEfficiencyHint,
			Title:   "Keyboard shortcuts for frequent actions",
			Content: "Since you're a regular here: press \"?\" anywhere to see the shortcut list.",
			Priority: TipPriorityLow, Dismissible: true, ShowOnce: true,
		}},
	}
}
