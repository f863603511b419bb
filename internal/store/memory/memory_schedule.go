package memory

import (
	"context"

	"github.com/Stefan/ppm-saas-sub001/internal/apperr"
	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

// --- ScheduleStore ---

func (s *Store) CreateSchedule(_ context.Context, sc domain.Schedule) (domain.Schedule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedules[sc.ID] = sc
	return sc, nil
}

func (s *Store) GetSchedule(_ context.Context, id string) (domain.Schedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sc, ok := s.schedules[id]
	if !ok {
		return domain.Schedule{}, apperr.NotFound("schedule", id)
	}
	return sc, nil
}

func (s *Store) CreateTask(_ context.Context, t domain.Task) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.tasks {
		if existing.ScheduleID == t.ScheduleID && existing.WBSCode == t.WBSCode {
			return domain.Task{}, apperr.Duplicate("task", t.WBSCode)
		}
	}
	s.tasks[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTask(_ context.Context, t domain.Task) (domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[t.ID]; !ok {
		return domain.Task{}, apperr.NotFound("task", t.ID)
	}
	s.tasks[t.ID] = t
	return t, nil
}

func (s *Store) GetTask(_ context.Context, id string) (domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[id]
	if !ok {
		return domain.Task{}, apperr.NotFound("task", id)
	}
	return t, nil
}

func (s *Store) ListTasks(_ context.Context, scheduleID string) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Task
	for _, t := range s.tasks {
		if t.ScheduleID == scheduleID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) ListChildTasks(_ context.Context, parentTaskID string) ([]domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Task
	for _, t := range s.tasks {
		if t.ParentTaskID == parentTaskID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) CreateWBSElement(_ context.Context, w domain.WBSElement) (domain.WBSElement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wbsElements[w.ID] = w
	return w, nil
}

func (s *Store) UpdateWBSElement(_ context.Context, w domain.WBSElement) (domain.WBSElement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.wbsElements[w.ID]; !ok {
		return domain.WBSElement{}, apperr.NotFound("wbs_element", w.ID)
	}
	s.wbsElements[w.ID] = w
	return w, nil
}

func (s *Store) GetWBSElement(_ context.Context, id string) (domain.WBSElement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.wbsElements[id]
	if !ok {
		return domain.WBSElement{}, apperr.NotFound("wbs_element", id)
	}
	return w, nil
}

func (s *Store) ListWBSElements(_ context.Context, projectID string) ([]domain.WBSElement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.WBSElement
	for _, w := range s.wbsElements {
		if w.ProjectID == projectID {
			out = append(out, w)
		}
	}
	return out, nil
}
