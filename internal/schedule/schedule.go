// Package schedule implements the task/WBS hierarchy: status-graph-gated
// task transitions, effort-weighted progress rollup, and WBS element
// hierarchy management including structural validation. Grounded on the
// original schedule_manager/wbs_manager modules, adapted to this repo's
// store interfaces.
package schedule

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/store"
)

// taskTransitions is the fixed status graph from spec §4.7.
var taskTransitions = map[domain.TaskStatus]map[domain.TaskStatus]struct{}{
	domain.TaskNotStarted: {domain.TaskInProgress: {}, domain.TaskOnHold: {}, domain.TaskCancelled: {}},
	domain.TaskInProgress: {domain.TaskOnHold: {}, domain.TaskCompleted: {}, domain.TaskCancelled: {}},
	domain.TaskOnHold:     {domain.TaskInProgress: {}, domain.TaskCancelled: {}},
	domain.TaskCompleted:  {domain.TaskInProgress: {}},
	domain.TaskCancelled:  {domain.TaskNotStarted: {}, domain.TaskInProgress: {}},
}

// Engine manages schedules, tasks, and WBS elements.
type Engine struct {
	store store.ScheduleStore
}

// New constructs an Engine.
func New(s store.ScheduleStore) *Engine {
	return &Engine{store: s}
}

// CreateTask validates the schedule exists, the parent (if any) belongs to
// the same schedule, and the WBS code is unique within the schedule; it
// derives duration_days from the planned window when unspecified.
func (e *Engine) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if _, err := e.store.GetSchedule(ctx, t.ScheduleID); err != nil {
		return domain.Task{}, err
	}

	if t.ParentTaskID != "" {
		parent, err := e.store.GetTask(ctx, t.ParentTaskID)
		if err != nil {
			return domain.Task{}, err
		}
		if parent.ScheduleID != t.ScheduleID {
			return domain.Task{}, apperr.ValidationMessage("parent task must belong to the same schedule")
		}
	}

	siblings, err := e.store.ListTasks(ctx, t.ScheduleID)
	if err != nil {
		return domain.Task{}, err
	}
	for _, s := range siblings {
		if s.WBSCode == t.WBSCode {
			return domain.Task{}, apperr.Duplicate("task", t.WBSCode)
		}
	}

	if t.DurationDays == 0 && !t.PlannedStart.IsZero() && !t.PlannedEnd.IsZero() {
		t.DurationDays = int(t.PlannedEnd.Sub(t.PlannedStart).Hours()/24) + 1
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = domain.TaskNotStarted
	}

	return e.store.CreateTask(ctx, t)
}

// UpdateTaskStatus validates the transition against the fixed graph and
// auto-fills actual_start/actual_end on entry into in_progress/completed.
func (e *Engine) UpdateTaskStatus(ctx context.Context, taskID string, to domain.TaskStatus) (domain.Task, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}

	if task.Status == to {
		return task, nil
	}
	if _, ok := taskTransitions[task.Status][to]; !ok {
		return domain.Task{}, apperr.Conflict(fmt.Sprintf("illegal task status transition: %s -> %s", task.Status, to))
	}

	now := time.Now()
	switch to {
	case domain.TaskInProgress:
		if task.ActualStart == nil {
			task.ActualStart = &now
		}
	case domain.TaskCompleted:
		if task.ActualEnd == nil {
			task.ActualEnd = &now
		}
		task.ProgressPct = 100
	}
	task.Status = to

	updated, err := e.store.UpdateTask(ctx, task)
	if err != nil {
		return domain.Task{}, err
	}

	if err := e.rollupFrom(ctx, updated.ParentTaskID); err != nil {
		return updated, err
	}
	return updated, nil
}

// SetTaskProgress updates a task's own progress and propagates the
// effort-weighted rollup up the parent chain.
func (e *Engine) SetTaskProgress(ctx context.Context, taskID string, progressPct int) (domain.Task, error) {
	task, err := e.store.GetTask(ctx, taskID)
	if err != nil {
		return domain.Task{}, err
	}
	task.ProgressPct = progressPct
	updated, err := e.store.UpdateTask(ctx, task)
	if err != nil {
		return domain.Task{}, err
	}
	if err := e.rollupFrom(ctx, updated.ParentTaskID); err != nil {
		return updated, err
	}
	return updated, nil
}

// rollupFrom recomputes progress for parentID and every ancestor above it:
// parent_progress = Σ(child_progress × planned_effort) / Σ(planned_effort),
// with a default weight of 1 when effort is missing (spec §4.7).
func (e *Engine) rollupFrom(ctx context.Context, parentID string) error {
	for parentID != "" {
		parent, err := e.store.GetTask(ctx, parentID)
		if err != nil {
			return err
		}
		children, err := e.store.ListChildTasks(ctx, parentID)
		if err != nil {
			return err
		}
		if len(children) == 0 {
			return nil
		}

		var weightedSum, totalWeight float64
		for _, c := range children {
			weight := c.PlannedEffort
			if weight == 0 {
				weight = 1
			}
			weightedSum += float64(c.ProgressPct) * weight
			totalWeight += weight
		}
		if totalWeight == 0 {
			return nil
		}
		parent.ProgressPct = int(math.Round(weightedSum / totalWeight))
		if _, err := e.store.UpdateTask(ctx, parent); err != nil {
			return err
		}
		parentID = parent.ParentTaskID
	}
	return nil
}
