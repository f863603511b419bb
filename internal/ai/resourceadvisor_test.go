package ai

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

func seedResource(t *testing.T, ms *memory.Store, id, name string, availability int, skills []string) domain.Resource {
	t.Helper()
	r, err := ms.CreateResource(context.Background(), domain.Resource{
		ID:           id,
		Name:         name,
		Availability: availability,
		Skills:       skills,
		HourlyRate:   decimal.NewFromInt(100),
	})
	require.NoError(t, err)
	return r
}

func TestMatchSkillsRanksByScoreThenCapacity(t *testing.T) {
	ms := memory.New()
	seedResource(t, ms, "r1", "Ada", 20, []string{"Go", "Postgres"})
	seedResource(t, ms, "r2", "Grace", 80, []string{"Go", "Postgres", "Kubernetes"})
	seedResource(t, ms, "r3", "Lin", 90, []string{"Design"})

	advisor := NewAdvisor(ms)
	results, err := advisor.MatchSkills(context.Background(), map[string][]string{
		"proj-1": {"Go", "Postgres"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	matches := results[0].MatchingResources
	require.Len(t, matches, 2) // r3 (Design only) scores below threshold
	assert.Equal(t, "r2", matches[0].ResourceID)
	assert.Equal(t, "r1", matches[1].ResourceID)
}

func TestMatchSkillsExcludesBelowThreshold(t *testing.T) {
	ms := memory.New()
	seedResource(t, ms, "r1", "Lin", 90, []string{"Design"})

	advisor := NewAdvisor(ms)
	results, err := advisor.MatchSkills(context.Background(), map[string][]string{
		"proj-1": {"Go", "Postgres"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Empty(t, results[0].MatchingResources)
}

func TestDetectConflictsFlagsOverAllocation(t *testing.T) {
	ms := memory.New()
	seedResource(t, ms, "r1", "Ada", 10, nil)
	ms.AddAllocation(domain.Allocation{ResourceID: "r1", ProjectID: "proj-a", AllocationPct: 70})
	ms.AddAllocation(domain.Allocation{ResourceID: "r1", ProjectID: "proj-b", AllocationPct: 60})

	advisor := NewAdvisor(ms)
	conflicts, err := advisor.DetectConflicts(context.Background())
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "over_allocation", conflicts[0].Type)
	assert.Equal(t, "critical", conflicts[0].Severity)
}

func TestDetectConflictsFlagsUnderUtilization(t *testing.T) {
	ms := memory.New()
	seedResource(t, ms, "r1", "Ada", 80, nil)
	ms.AddAllocation(domain.Allocation{ResourceID: "r1", ProjectID: "proj-a", AllocationPct: 20})

	advisor := NewAdvisor(ms)
	conflicts, err := advisor.DetectConflicts(context.Background())
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "under_utilization", conflicts[0].Type)
}
