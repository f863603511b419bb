package audit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

func TestStatisticsAggregatesRecentImports(t *testing.T) {
	ms := memory.New()
	ctx := context.Background()

	require.NoError(t, ms.RecordImport(ctx, domain.ImportAuditLog{
		ImportID: "i1", Total: 10, SuccessCount: 8, ErrorCount: 2,
		Status: domain.ImportPartial, FinishedAt: time.Now(),
	}))
	require.NoError(t, ms.RecordImport(ctx, domain.ImportAuditLog{
		ImportID: "i2", Total: 5, SuccessCount: 5,
		Status: domain.ImportCompleted, FinishedAt: time.Now().AddDate(0, 0, -60),
	}))

	svc := New(ms)
	stats, err := svc.Statistics(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalImports)
	assert.Equal(t, 10, stats.TotalRows)
	assert.Equal(t, 2, stats.TotalErrors)
}

func TestImportsOrderedMostRecentFirst(t *testing.T) {
	ms := memory.New()
	ctx := context.Background()

	older := time.Now().AddDate(0, 0, -1)
	newer := time.Now()
	require.NoError(t, ms.RecordImport(ctx, domain.ImportAuditLog{ImportID: "old", FinishedAt: older}))
	require.NoError(t, ms.RecordImport(ctx, domain.ImportAuditLog{ImportID: "new", FinishedAt: newer}))

	svc := New(ms)
	logs, err := svc.Imports(ctx, 30)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "new", logs[0].ImportID)
	assert.Equal(t, "old", logs[1].ImportID)
}

func TestEventsFiltersByType(t *testing.T) {
	ms := memory.New()
	ctx := context.Background()

	require.NoError(t, ms.RecordEvent(ctx, "role_assigned", "user-1", nil))
	require.NoError(t, ms.RecordEvent(ctx, "role_removed", "user-1", nil))

	svc := New(ms)
	events, err := svc.Events(ctx, 30, "role_assigned")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "role_assigned", events[0].EventType)
}
