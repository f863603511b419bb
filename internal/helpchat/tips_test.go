package helpchat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTipsEngineGeneratesRouteSpecificTip(t *testing.T) {
	engine := NewTipsEngine()
	tips := engine.Generate(PageContext{Route: "/financial/overview"}, UserBehavior{SessionCount: 5}, nil)

	found := false
	for _, tip := range tips {
		if tip.TipID == "financial_variance_tip" {
			found = true
		}
	}
	assert.True(t, found, "expected the financial-route tip to be generated")
}

func TestTipsEngineHonorsDismissedTips(t *testing.T) {
	engine := NewTipsEngine()
	tips := engine.Generate(PageContext{Route: "/dashboard"}, UserBehavior{SessionCount: 5}, []string{"dashboard_customize"})

	for _, tip := range tips {
		assert.NotEqual(t, "dashboard_customize", tip.TipID)
	}
}

func TestTipsEngineNewUserWalkthroughOnlyForFirstSession(t *testing.T) {
	engine := NewTipsEngine()

	firstSession := engine.Generate(PageContext{Route: "/dashboard"}, UserBehavior{SessionCount: 1}, nil)
	returning := engine.Generate(PageContext{Route: "/dashboard"}, UserBehavior{SessionCount: 10}, nil)

	assert.True(t, containsTipID(firstSession, "new_user_walkthrough"))
	assert.False(t, containsTipID(returning, "new_user_walkthrough"))
}

func TestTipsEngineSurfacesRepeatedErrorWarning(t *testing.T) {
	engine := NewTipsEngine()

	withErrors := engine.Generate(PageContext{Route: "/project/123"}, UserBehavior{SessionCount: 5, ErrorPatterns: []string{"save_failed"}}, nil)
	withoutErrors := engine.Generate(PageContext{Route: "/project/123"}, UserBehavior{SessionCount: 5}, nil)

	assert.True(t, containsTipID(withErrors, "repeated_error_help"))
	assert.False(t, containsTipID(withoutErrors, "repeated_error_help"))
}

func TestTipsEngineCapsResultsAndOrdersByPriority(t *testing.T) {
	engine := NewTipsEngine()
	tips := engine.Generate(PageContext{Route: "/dashboard"}, UserBehavior{SessionCount: 1, ErrorPatterns: []string{"x"}}, nil)

	assert.LessOrEqual(t, len(tips), 3)
	for i := 1; i < len(tips); i++ {
		assert.LessOrEqual(t, priorityRank[tips[i-1].Priority], priorityRank[tips[i].Priority])
	}
}

func containsTipID(tips []Tip, id string) bool {
	for _, tip := range tips {
		if tip.TipID == id {
			return true
		}
	}
	return false
}
