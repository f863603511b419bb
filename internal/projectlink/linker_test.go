package projectlink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
	"github.com/google/uuid"
)

func existingProject(name, portfolioID string) domain.Project {
	return domain.Project{
		ID:          uuid.NewString(),
		PortfolioID: portfolioID,
		Name:        name,
		Status:      domain.ProjectActive,
		Health:      domain.HealthGreen,
	}
}

const testPortfolioID = "7608eb53-768e-4fa8-94f7-633c92b7a6ab"

func TestGetOrCreateCreatesOnMiss(t *testing.T) {
	ms := memory.New()
	l := New(ms, testPortfolioID)

	id, err := l.GetOrCreate(context.Background(), "P0001", "WBS-1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	project, err := ms.GetProject(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "P0001", project.Name)
	assert.Equal(t, "Auto-created project for WBS: WBS-1", project.Description)
	assert.Equal(t, testPortfolioID, project.PortfolioID)
}

// Idempotence: calling N times with the same arguments returns the same
// identifier and creates at most one project row.
func TestGetOrCreateIdempotent(t *testing.T) {
	ms := memory.New()
	l := New(ms, testPortfolioID)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		id, err := l.GetOrCreate(ctx, "P0002", "")
		require.NoError(t, err)
		ids = append(ids, id)
	}
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}

	projects, err := ms.ListProjects(ctx, "")
	require.NoError(t, err)
	assert.Len(t, projects, 1)
}

func TestPreloadAvoidsPerRowLookups(t *testing.T) {
	ms := memory.New()
	ctx := context.Background()
	_, err := ms.CreateProject(ctx, existingProject("P0003", testPortfolioID))
	require.NoError(t, err)

	l := New(ms, testPortfolioID)
	require.NoError(t, l.Preload(ctx))

	id, err := l.GetOrCreate(ctx, "P0003", "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	projects, err := ms.ListProjects(ctx, "")
	require.NoError(t, err)
	assert.Len(t, projects, 1, "preload + cache hit must not create a duplicate")
}
