package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

func TestAssignVariantIsDeterministicPerUser(t *testing.T) {
	first := AssignVariant("test-1", "user-42", 0.5)
	second := AssignVariant("test-1", "user-42", 0.5)
	assert.Equal(t, first, second)
}

func TestAssignVariantRespectsSplitAtExtremes(t *testing.T) {
	assert.Equal(t, VariantB, AssignVariant("test-1", "user-42", 0))
	assert.Equal(t, VariantA, AssignVariant("test-1", "user-42", 1))
}

func TestModelForResolvesVariant(t *testing.T) {
	test := domain.ABTest{ID: "t1", ModelAID: "model-a", ModelBID: "model-b", TrafficSplit: 1}
	assert.Equal(t, "model-a", ModelFor(test, "user-1"))

	test.TrafficSplit = 0
	assert.Equal(t, "model-b", ModelFor(test, "user-1"))
}

func TestAnalyzeResultsComparesVariants(t *testing.T) {
	ms := memory.New()
	ctx := context.Background()
	svc := NewABService(ms)

	test, err := svc.CreateTest(ctx, "model-a", "model-b", "rag_query", 0.5, 7*24*time.Hour)
	require.NoError(t, err)

	for i := 0; i < 40; i++ {
		success := i%2 == 0
		_ = ms.LogOperation(ctx, domain.AIOperationRecord{
			OperationID:   "op-a-" + itoa(i),
			OperationType: "rag_query",
			Success:       success,
			Confidence:    0.8,
			ResponseTime:  100 * time.Millisecond,
			Metadata:      map[string]interface{}{"ab_test_id": test.ID, "ab_variant": VariantA},
		})
	}
	for i := 0; i < 40; i++ {
		_ = ms.LogOperation(ctx, domain.AIOperationRecord{
			OperationID:   "op-b-" + itoa(i),
			OperationType: "rag_query",
			Success:       true,
			Confidence:    0.9,
			ResponseTime:  90 * time.Millisecond,
			Metadata:      map[string]interface{}{"ab_test_id": test.ID, "ab_variant": VariantB},
		})
	}

	analysis, err := svc.AnalyzeResults(ctx, test.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, analysis.VariantA.SampleSize)
	assert.Equal(t, 40, analysis.VariantB.SampleSize)
	assert.InDelta(t, 0.5, analysis.VariantA.SuccessRate, 0.01)
	assert.InDelta(t, 1.0, analysis.VariantB.SuccessRate, 0.01)
	assert.True(t, analysis.StatisticallySignificant)
}

func itoa(i int) string {
	digits := "0123456789"
	if i == 0 {
		return "0"
	}
	var out []byte
	for i > 0 {
		out = append([]byte{digits[i%10]}, out...)
		i /= 10
	}
	return string(out)
}
