package schedule

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store/memory"
)

func newTestEngine(t *testing.T) (*Engine, *memory.Store, domain.Schedule) {
	t.Helper()
	ms := memory.New()
	ctx := context.Background()
	sc, err := ms.CreateSchedule(ctx, domain.Schedule{ID: "sched-1", ProjectID: "proj-1"})
	require.NoError(t, err)
	return New(ms), ms, sc
}

func TestCreateTaskRejectsDuplicateWBSCode(t *testing.T) {
	eng, _, sc := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.CreateTask(ctx, domain.Task{ID: "t1", ScheduleID: sc.ID, WBSCode: "1.1"})
	require.NoError(t, err)

	_, err = eng.CreateTask(ctx, domain.Task{ID: "t2", ScheduleID: sc.ID, WBSCode: "1.1"})
	require.Error(t, err)
}

func TestCreateTaskRejectsCrossScheduleParent(t *testing.T) {
	eng, ms, sc := newTestEngine(t)
	ctx := context.Background()
	otherSchedule, err := ms.CreateSchedule(ctx, domain.Schedule{ID: "sched-2"})
	require.NoError(t, err)

	parent, err := eng.CreateTask(ctx, domain.Task{ID: "parent", ScheduleID: otherSchedule.ID, WBSCode: "1"})
	require.NoError(t, err)

	_, err = eng.CreateTask(ctx, domain.Task{ID: "child", ScheduleID: sc.ID, ParentTaskID: parent.ID, WBSCode: "1.1"})
	require.Error(t, err)
}

func TestUpdateTaskStatusValidTransition(t *testing.T) {
	eng, _, sc := newTestEngine(t)
	ctx := context.Background()
	task, err := eng.CreateTask(ctx, domain.Task{ID: "t1", ScheduleID: sc.ID, WBSCode: "1"})
	require.NoError(t, err)

	updated, err := eng.UpdateTaskStatus(ctx, task.ID, domain.TaskInProgress)
	require.NoError(t, err)
	assert.Equal(t, domain.TaskInProgress, updated.Status)
	assert.NotNil(t, updated.ActualStart)
}

func TestUpdateTaskStatusRejectsIllegalTransition(t *testing.T) {
	eng, _, sc := newTestEngine(t)
	ctx := context.Background()
	task, err := eng.CreateTask(ctx, domain.Task{ID: "t1", ScheduleID: sc.ID, WBSCode: "1", Status: domain.TaskNotStarted})
	require.NoError(t, err)

	_, err = eng.UpdateTaskStatus(ctx, task.ID, domain.TaskCompleted)
	require.Error(t, err)
}

// Testable Property #10: parent progress is the effort-weighted mean of
// its children's progress, falling back to weight 1 when effort is unset.
func TestProgressRollupEffortWeighted(t *testing.T) {
	eng, ms, sc := newTestEngine(t)
	ctx := context.Background()

	parent, err := eng.CreateTask(ctx, domain.Task{ID: "parent", ScheduleID: sc.ID, WBSCode: "1"})
	require.NoError(t, err)
	_, err = eng.CreateTask(ctx, domain.Task{ID: "c1", ScheduleID: sc.ID, ParentTaskID: parent.ID, WBSCode: "1.1", PlannedEffort: 3})
	require.NoError(t, err)
	_, err = eng.CreateTask(ctx, domain.Task{ID: "c2", ScheduleID: sc.ID, ParentTaskID: parent.ID, WBSCode: "1.2", PlannedEffort: 1})
	require.NoError(t, err)

	_, err = eng.SetTaskProgress(ctx, "c1", 100) // (100*3 + 0*1) / 4 = 75
	require.NoError(t, err)

	updatedParent, err := ms.GetTask(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 75, updatedParent.ProgressPct)
}

func TestProgressRollupPropagatesMultipleLevels(t *testing.T) {
	eng, ms, sc := newTestEngine(t)
	ctx := context.Background()

	grandparent, err := eng.CreateTask(ctx, domain.Task{ID: "gp", ScheduleID: sc.ID, WBSCode: "1", PlannedEffort: 1})
	require.NoError(t, err)
	parent, err := eng.CreateTask(ctx, domain.Task{ID: "parent", ScheduleID: sc.ID, ParentTaskID: grandparent.ID, WBSCode: "1.1", PlannedEffort: 1})
	require.NoError(t, err)
	_, err = eng.CreateTask(ctx, domain.Task{ID: "leaf", ScheduleID: sc.ID, ParentTaskID: parent.ID, WBSCode: "1.1.1", PlannedEffort: 1})
	require.NoError(t, err)

	_, err = eng.SetTaskProgress(ctx, "leaf", 100)
	require.NoError(t, err)

	updatedParent, err := ms.GetTask(ctx, parent.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, updatedParent.ProgressPct)

	updatedGrandparent, err := ms.GetTask(ctx, grandparent.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, updatedGrandparent.ProgressPct)
}
