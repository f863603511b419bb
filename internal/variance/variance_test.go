package variance

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/logger"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

func newTestEngine() (*Engine, *memory.Store) {
	ms := memory.New()
	return New(ms, ms, ms, logger.NewDefault("test")), ms
}

func seedCommitment(ms *memory.Store, projectID, amount string) {
	ms.InsertCommitmentsBatch(context.Background(), []domain.Commitment{{
		ProjectID:   projectID,
		PONetAmount: decimal.RequireFromString(amount),
	}})
}

func seedActual(ms *memory.Store, projectID, amount string) {
	ms.InsertActualsBatch(context.Background(), []domain.Actual{{
		ProjectID: projectID,
		Amount:    decimal.RequireFromString(amount),
	}})
}

func TestProjectSummaryOnBudget(t *testing.T) {
	eng, ms := newTestEngine()
	seedCommitment(ms, "p1", "1000")
	seedActual(ms, "p1", "1000")

	fact, err := eng.ProjectSummary(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.VarianceOn, fact.Status)
	assert.True(t, fact.VariancePct.IsZero())
}

func TestProjectSummaryOver(t *testing.T) {
	eng, ms := newTestEngine()
	seedCommitment(ms, "p1", "1000")
	seedActual(ms, "p1", "1200") // 20% over

	fact, err := eng.ProjectSummary(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.VarianceOver, fact.Status)
	assert.True(t, fact.VariancePct.Equal(decimal.NewFromInt(20)))
}

func TestProjectSummaryUnder(t *testing.T) {
	eng, ms := newTestEngine()
	seedCommitment(ms, "p1", "1000")
	seedActual(ms, "p1", "800") // 20% under

	fact, err := eng.ProjectSummary(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.VarianceUnder, fact.Status)
}

// Boundary: exactly ±5% stays "on".
func TestProjectSummaryBoundaryStaysOn(t *testing.T) {
	eng, ms := newTestEngine()
	seedCommitment(ms, "p1", "1000")
	seedActual(ms, "p1", "1050") // exactly +5%

	fact, err := eng.ProjectSummary(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.VarianceOn, fact.Status)
}

func TestProjectSummaryZeroCommitment(t *testing.T) {
	eng, ms := newTestEngine()
	seedActual(ms, "p1", "500")

	fact, err := eng.ProjectSummary(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, fact.VariancePct.IsZero())
}

func TestInitializeDefaultRulesIsIdempotent(t *testing.T) {
	eng, ms := newTestEngine()
	ctx := context.Background()
	require.NoError(t, eng.InitializeDefaultRules(ctx, "org-1"))
	require.NoError(t, eng.InitializeDefaultRules(ctx, "org-1"))

	rules, err := ms.ListActiveRules(ctx, "org-1")
	require.NoError(t, err)
	assert.Len(t, rules, 4)
}

func TestCheckThresholdsCreatesAlertAndRespectsCooldown(t *testing.T) {
	eng, ms := newTestEngine()
	ctx := context.Background()
	require.NoError(t, eng.InitializeDefaultRules(ctx, "org-1"))

	seedCommitment(ms, "p1", "1000")
	seedActual(ms, "p1", "1600") // 60% over: crosses all four rules

	alerts, err := eng.CheckThresholds(ctx, "org-1", []string{"p1"})
	require.NoError(t, err)
	assert.Len(t, alerts, 4)

	// Re-running within cooldown must not create duplicate alerts.
	alerts2, err := eng.CheckThresholds(ctx, "org-1", []string{"p1"})
	require.NoError(t, err)
	assert.Empty(t, alerts2)
}

func TestAlertTransitionsAreMonotonic(t *testing.T) {
	eng, ms := newTestEngine()
	ctx := context.Background()
	alert, err := ms.CreateAlert(ctx, domain.VarianceAlert{ID: "a1", Status: domain.AlertNew, CreatedAt: time.Now()})
	require.NoError(t, err)

	acked, err := eng.Acknowledge(ctx, alert.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AlertAcknowledged, acked.Status)

	resolved, err := eng.Resolve(ctx, alert.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, domain.AlertResolved, resolved.Status)

	// Backward transition is disallowed.
	_, err = eng.Acknowledge(ctx, alert.ID, "user-1")
	require.Error(t, err)
}
