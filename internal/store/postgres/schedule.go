package postgres

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

// --- ScheduleStore -----------------------------------------------------------

func (s *Store) CreateSchedule(ctx context.Context, sc domain.Schedule) (domain.Schedule, error) {
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedules (id, project_id, name, start_date, end_date, baseline_start, baseline_end, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, sc.ID, sc.ProjectID, sc.Name, sc.StartDate, sc.EndDate, sc.BaselineStart, sc.BaselineEnd, sc.Status)
	if err != nil {
		return domain.Schedule{}, err
	}
	return sc, nil
}

func (s *Store) GetSchedule(ctx context.Context, id string) (domain.Schedule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, name, start_date, end_date, baseline_start, baseline_end, status
		FROM schedules WHERE id = $1
	`, id)
	var sc domain.Schedule
	err := row.Scan(&sc.ID, &sc.ProjectID, &sc.Name, &sc.StartDate, &sc.EndDate, &sc.BaselineStart, &sc.BaselineEnd, &sc.Status)
	if err == sql.ErrNoRows {
		return domain.Schedule{}, apperr.NotFound("schedule", id)
	}
	return sc, err
}

func (s *Store) CreateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tasks
			(id, schedule_id, parent_task_id, wbs_code, planned_start, planned_end, actual_start, actual_end, baseline_start, baseline_end, duration_days, progress_pct, status, planned_effort, actual_effort, remaining_effort, critical, float_days, deliverables, acceptance_criteria)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`, t.ID, t.ScheduleID, t.ParentTaskID, t.WBSCode, t.PlannedStart, t.PlannedEnd, t.ActualStart, t.ActualEnd, t.BaselineStart, t.BaselineEnd, t.DurationDays, t.ProgressPct, t.Status, t.PlannedEffort, t.ActualEffort, t.RemainingEffort, t.Critical, t.Float, t.Deliverables, t.AcceptanceCriteria)
	if isUniqueViolation(err) {
		return domain.Task{}, apperr.Duplicate("task", t.WBSCode)
	}
	if err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (s *Store) UpdateTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE tasks SET
			parent_task_id = $2, wbs_code = $3, planned_start = $4, planned_end = $5, actual_start = $6, actual_end = $7,
			baseline_start = $8, baseline_end = $9, duration_days = $10, progress_pct = $11, status = $12,
			planned_effort = $13, actual_effort = $14, remaining_effort = $15, critical = $16, float_days = $17,
			deliverables = $18, acceptance_criteria = $19
		WHERE id = $1
	`, t.ID, t.ParentTaskID, t.WBSCode, t.PlannedStart, t.PlannedEnd, t.ActualStart, t.ActualEnd, t.BaselineStart, t.BaselineEnd, t.DurationDays, t.ProgressPct, t.Status, t.PlannedEffort, t.ActualEffort, t.RemainingEffort, t.Critical, t.Float, t.Deliverables, t.AcceptanceCriteria)
	if err != nil {
		return domain.Task{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.Task{}, apperr.NotFound("task", t.ID)
	}
	return t, nil
}

func (s *Store) GetTask(ctx context.Context, id string) (domain.Task, error) {
	row := s.db.QueryRowContext(ctx, taskSelect+` WHERE id = $1`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return domain.Task{}, apperr.NotFound("task", id)
	}
	return t, err
}

func (s *Store) ListTasks(ctx context.Context, scheduleID string) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, taskSelect+` WHERE schedule_id = $1 ORDER BY wbs_code`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) ListChildTasks(ctx context.Context, parentTaskID string) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, taskSelect+` WHERE parent_task_id = $1 ORDER BY wbs_code`, parentTaskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

const taskSelect = `
	SELECT id, schedule_id, parent_task_id, wbs_code, planned_start, planned_end, actual_start, actual_end, baseline_start, baseline_end, duration_days, progress_pct, status, planned_effort, actual_effort, remaining_effort, critical, float_days, deliverables, acceptance_criteria
	FROM tasks`

func scanTask(scanner rowScanner) (domain.Task, error) {
	var t domain.Task
	err := scanner.Scan(&t.ID, &t.ScheduleID, &t.ParentTaskID, &t.WBSCode, &t.PlannedStart, &t.PlannedEnd, &t.ActualStart, &t.ActualEnd, &t.BaselineStart, &t.BaselineEnd, &t.DurationDays, &t.ProgressPct, &t.Status, &t.PlannedEffort, &t.ActualEffort, &t.RemainingEffort, &t.Critical, &t.Float, &t.Deliverables, &t.AcceptanceCriteria)
	return t, err
}

// --- WBS elements --------------------------------------------------------------

func (s *Store) CreateWBSElement(ctx context.Context, w domain.WBSElement) (domain.WBSElement, error) {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO wbs_elements
			(id, project_id, parent_id, code, name, level_number, sort_order, progress_pct, planned_effort, work_package_manager, deliverable_description, acceptance_criteria)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, w.ID, w.ProjectID, w.ParentID, w.Code, w.Name, w.LevelNumber, w.SortOrder, w.ProgressPct, w.PlannedEffort, w.WorkPackageManager, w.DeliverableDescription, w.AcceptanceCriteria)
	if isUniqueViolation(err) {
		return domain.WBSElement{}, apperr.Duplicate("wbs_element", w.Code)
	}
	if err != nil {
		return domain.WBSElement{}, err
	}
	return w, nil
}

func (s *Store) UpdateWBSElement(ctx context.Context, w domain.WBSElement) (domain.WBSElement, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE wbs_elements SET
			parent_id = $2, code = $3, name = $4, level_number = $5, sort_order = $6, progress_pct = $7,
			planned_effort = $8, work_package_manager = $9, deliverable_description = $10, acceptance_criteria = $11
		WHERE id = $1
	`, w.ID, w.ParentID, w.Code, w.Name, w.LevelNumber, w.SortOrder, w.ProgressPct, w.PlannedEffort, w.WorkPackageManager, w.DeliverableDescription, w.AcceptanceCriteria)
	if err != nil {
		return domain.WBSElement{}, err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return domain.WBSElement{}, apperr.NotFound("wbs_element", w.ID)
	}
	return w, nil
}

func (s *Store) GetWBSElement(ctx context.Context, id string) (domain.WBSElement, error) {
	row := s.db.QueryRowContext(ctx, wbsSelect+` WHERE id = $1`, id)
	w, err := scanWBSElement(row)
	if err == sql.ErrNoRows {
		return domain.WBSElement{}, apperr.NotFound("wbs_element", id)
	}
	return w, err
}

func (s *Store) ListWBSElements(ctx context.Context, projectID string) ([]domain.WBSElement, error) {
	rows, err := s.db.QueryContext(ctx, wbsSelect+` WHERE project_id = $1 ORDER BY sort_order`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.WBSElement
	for rows.Next() {
		w, err := scanWBSElement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

const wbsSelect = `
	SELECT id, project_id, parent_id, code, name, level_number, sort_order, progress_pct, planned_effort, work_package_manager, deliverable_description, acceptance_criteria
	FROM wbs_elements`

func scanWBSElement(scanner rowScanner) (domain.WBSElement, error) {
	var w domain.WBSElement
	err := scanner.Scan(&w.ID, &w.ProjectID, &w.ParentID, &w.Code, &w.Name, &w.LevelNumber, &w.SortOrder, &w.ProgressPct, &w.PlannedEffort, &w.WorkPackageManager, &w.DeliverableDescription, &w.AcceptanceCriteria)
	return w, err
}
