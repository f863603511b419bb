package importengine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/logger"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

const testPortfolioID = "7608eb53-768e-4fa8-94f7-633c92b7a6ab"

func newTestEngine() (*Engine, *memory.Store) {
	ms := memory.New()
	eng := New(ms, ms, ms, testPortfolioID, logger.NewDefault("test"))
	return eng, ms
}

func actualRow(fiDoc, projectNr, amount string) RawActual {
	return RawActual{
		FIDocNo:     fiDoc,
		ProjectNr:   projectNr,
		PostingDate: time.Now(),
		Vendor:      "ACME",
		Amount:      amount,
		Currency:    "USD",
	}
}

func commitmentRow(poNumber string, poLineNr int, projectNr string) RawCommitment {
	return RawCommitment{
		PONumber:    poNumber,
		POLineNr:    poLineNr,
		PODate:      time.Now(),
		Vendor:      "ACME",
		ProjectNr:   projectNr,
		PONetAmount: "500.00",
		TotalAmount: "550.00",
		Currency:    "USD",
	}
}

// S1 — actuals happy path.
func TestImportActualsHappyPath(t *testing.T) {
	eng, _ := newTestEngine()
	rows := []RawActual{
		actualRow("A1", "PRJ-1", "100.00"),
		actualRow("A2", "PRJ-2", "200.00"),
		actualRow("A3", "PRJ-3", "300.00"),
	}
	result, err := eng.ImportActuals(context.Background(), "user-1", rows, true)
	require.NoError(t, err)
	assert.Equal(t, 3, result.SuccessCount)
	assert.Equal(t, 0, result.DuplicateCount)
	assert.Equal(t, 0, result.ErrorCount)
	assert.True(t, result.Success)
}

// S2 — actuals with in-batch duplicate.
func TestImportActualsInBatchDuplicate(t *testing.T) {
	eng, _ := newTestEngine()
	rows := []RawActual{
		actualRow("A1", "PRJ-1", "100.00"),
		actualRow("A1", "PRJ-1", "100.00"),
		actualRow("A2", "PRJ-2", "200.00"),
	}
	result, err := eng.ImportActuals(context.Background(), "user-1", rows, true)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SuccessCount)
	assert.Equal(t, 1, result.DuplicateCount)
	assert.Equal(t, 0, result.ErrorCount)
}

// S3 — commitments composite-key dedupe against a pre-seeded row.
func TestImportCommitmentsCompositeDedupe(t *testing.T) {
	eng, ms := newTestEngine()
	ctx := context.Background()

	_, err := ms.CreateProject(ctx, domain.Project{
		ID:          uuid.NewString(),
		PortfolioID: testPortfolioID,
		Name:        "PRJ-1",
		Status:      domain.ProjectActive,
		Health:      domain.HealthGreen,
	})
	require.NoError(t, err)
	require.NoError(t, ms.InsertCommitmentsBatch(ctx, []domain.Commitment{{
		ID:          uuid.NewString(),
		PONumber:    "PO100",
		POLineNr:    1,
		PODate:      time.Now(),
		ProjectNr:   "PRJ-1",
		PONetAmount: decimal.NewFromInt(500),
		TotalAmount: decimal.NewFromInt(550),
		Currency:    "USD",
	}}))

	rows := []RawCommitment{
		commitmentRow("PO100", 1, "PRJ-1"), // duplicate of the seeded row
		commitmentRow("PO100", 2, "PRJ-1"), // new line
	}
	result, err := eng.ImportCommitments(ctx, "user-1", rows, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.SuccessCount)
	assert.Equal(t, 1, result.DuplicateCount)
	assert.Equal(t, 0, result.ErrorCount)
}

// S4 — validation failure cap: 200 invalid rows collapse to 51 error entries
// (50 explicit + 1 aggregate marker) while error_count still reflects 200.
func TestImportActualsValidationCap(t *testing.T) {
	eng, _ := newTestEngine()
	var rows []RawActual
	for i := 0; i < 200; i++ {
		rows = append(rows, actualRow("", "PRJ-1", "not-a-number"))
	}
	result, err := eng.ImportActuals(context.Background(), "user-1", rows, true)
	require.NoError(t, err)
	assert.Equal(t, 0, result.SuccessCount)
	assert.Equal(t, 0, result.DuplicateCount)
	assert.Equal(t, 200, result.ErrorCount)
	assert.Len(t, result.Errors, MaxErrorsToCollect+1)
	assert.Equal(t, domain.ImportFailed, statusFor(result))
}

// Testable Property #1: a row with several simultaneous field errors still
// counts once toward error_count.
func TestImportRowWithMultipleFieldErrorsCountsOnce(t *testing.T) {
	eng, _ := newTestEngine()
	rows := []RawActual{
		{FIDocNo: "", ProjectNr: "", Amount: "not-a-number", Currency: ""},
	}
	result, err := eng.ImportActuals(context.Background(), "user-1", rows, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.ErrorCount)
	assert.True(t, len(result.Errors) > 1, "expected multiple field errors recorded for the single row")
}

func TestImportTotalsInvariant(t *testing.T) {
	eng, _ := newTestEngine()
	rows := []RawActual{
		actualRow("A1", "PRJ-1", "100.00"),
		actualRow("A1", "PRJ-1", "100.00"),
		actualRow("", "PRJ-1", "bad"),
	}
	result, err := eng.ImportActuals(context.Background(), "user-1", rows, true)
	require.NoError(t, err)
	assert.Equal(t, result.Total, result.SuccessCount+result.DuplicateCount+result.ErrorCount)
}

func statusFor(r domain.ImportResult) domain.ImportStatus {
	switch {
	case r.ErrorCount == 0:
		return domain.ImportCompleted
	case r.SuccessCount > 0:
		return domain.ImportPartial
	default:
		return domain.ImportFailed
	}
}
