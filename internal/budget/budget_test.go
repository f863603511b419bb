package budget

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

func seedProject(t *testing.T, ms *memory.Store, id, budget, actual string) domain.Project {
	t.Helper()
	p, err := ms.CreateProject(context.Background(), domain.Project{
		ID:         id,
		Name:       id,
		Budget:     decimal.RequireFromString(budget),
		ActualCost: decimal.RequireFromString(actual),
		Status:     domain.ProjectActive,
		Health:     domain.HealthGreen,
	})
	require.NoError(t, err)
	return p
}

func TestBudgetVarianceOnBudget(t *testing.T) {
	ms := memory.New()
	seedProject(t, ms, "p1", "10000", "10500") // +5%
	s := New(ms, ms)

	v, err := s.BudgetVarianceFor(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, OnBudget, v.Status)
}

func TestBudgetVarianceOverBudget(t *testing.T) {
	ms := memory.New()
	seedProject(t, ms, "p1", "10000", "12000") // +20%
	s := New(ms, ms)

	v, err := s.BudgetVarianceFor(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, OverBudget, v.Status)
	assert.True(t, v.UtilizationPercentage.Equal(decimal.NewFromInt(120)))
}

func TestBudgetVarianceUnderBudget(t *testing.T) {
	ms := memory.New()
	seedProject(t, ms, "p1", "10000", "8000") // -20%
	s := New(ms, ms)

	v, err := s.BudgetVarianceFor(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, UnderBudget, v.Status)
}

func TestComprehensiveReportAggregatesRiskCounts(t *testing.T) {
	ms := memory.New()
	seedProject(t, ms, "over", "1000", "1300")    // over-budget, critical (>20%), utilization 130% -> at risk
	seedProject(t, ms, "at-risk", "1000", "850")  // utilization 85% -> at risk
	seedProject(t, ms, "healthy", "1000", "1000") // on budget, utilization 100% -> at risk

	s := New(ms, ms)
	report, err := s.ComprehensiveReport(context.Background(), "", true)
	require.NoError(t, err)

	assert.Equal(t, 1, report.OverBudgetCount)
	assert.Equal(t, 3, report.AtRiskCount)
	assert.Equal(t, 1, report.CriticalCount)
	assert.Len(t, report.Projection6Month, 6)
}

func TestComprehensiveReportGroupsSpendByCategory(t *testing.T) {
	ms := memory.New()
	seedProject(t, ms, "p1", "10000", "900")

	require.NoError(t, ms.InsertActualsBatch(context.Background(), []domain.Actual{
		{FIDocNo: "fi-1", ProjectID: "p1", Amount: decimal.NewFromInt(500), DocumentType: "RE"},
		{FIDocNo: "fi-2", ProjectID: "p1", Amount: decimal.NewFromInt(300), DocumentType: "RE"},
		{FIDocNo: "fi-3", ProjectID: "p1", Amount: decimal.NewFromInt(100), DocumentType: ""},
	}))

	s := New(ms, ms)
	report, err := s.ComprehensiveReport(context.Background(), "", false)
	require.NoError(t, err)

	require.Contains(t, report.PerCategory, "RE")
	assert.True(t, report.PerCategory["RE"].Equal(decimal.NewFromInt(800)))
	require.Contains(t, report.PerCategory, uncategorized)
	assert.True(t, report.PerCategory[uncategorized].Equal(decimal.NewFromInt(100)))
}

// Currency reciprocity (Testable Property): rate(a,b) == 1/rate(b,a).
func TestConvertCurrencyReciprocity(t *testing.T) {
	amount := decimal.NewFromInt(100)
	eurToUSD, err := ConvertCurrency(amount, "EUR", "USD")
	require.NoError(t, err)
	usdToEUR, err := ConvertCurrency(eurToUSD, "USD", "EUR")
	require.NoError(t, err)

	diff := amount.Sub(usdToEUR).Abs()
	assert.True(t, diff.LessThan(decimal.NewFromFloat(0.01)), "round trip should return (approximately) the original amount")
}

func TestConvertCurrencySameCurrencyIsIdentity(t *testing.T) {
	amount := decimal.NewFromInt(42)
	out, err := ConvertCurrency(amount, "USD", "USD")
	require.NoError(t, err)
	assert.True(t, out.Equal(amount))
}

func TestConvertCurrencyUnknownCode(t *testing.T) {
	_, err := ConvertCurrency(decimal.NewFromInt(1), "USD", "XXX")
	require.Error(t, err)
}

func TestCheckBudgetThresholds(t *testing.T) {
	ms := memory.New()
	seedProject(t, ms, "overrun", "1000", "1100") // 110% utilization
	s := New(ms, ms)

	sev, err := s.CheckBudgetThresholds(context.Background(), "overrun")
	require.NoError(t, err)
	require.NotNil(t, sev)
	assert.Equal(t, AlertOverrun, *sev)
}

func TestSimulateCompletionCostReturnsOrderedBand(t *testing.T) {
	ms := memory.New()
	seedProject(t, ms, "p1", "10000", "9000")
	s := New(ms, ms)

	est, err := s.SimulateCompletionCost(context.Background(), "p1", 500)
	require.NoError(t, err)
	assert.True(t, est.P10.LessThanOrEqual(est.P50))
	assert.True(t, est.P50.LessThanOrEqual(est.P90))
}
