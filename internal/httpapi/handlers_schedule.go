package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/schedule"
)

type createScheduleRequest struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermScheduleManage) {
		return
	}

	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	sc, err := s.stores.CreateSchedule(r.Context(), domain.Schedule{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		StartDate: parseDate(req.StartDate),
		EndDate:   parseDate(req.EndDate),
		Status:    "active",
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, sc)
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermScheduleRead) {
		return
	}

	sc, err := s.stores.GetSchedule(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, sc)
}

type createTaskRequest struct {
	ParentTaskID  string  `json:"parent_task_id"`
	WBSCode       string  `json:"wbs_code"`
	PlannedStart  string  `json:"planned_start"`
	PlannedEnd    string  `json:"planned_end"`
	PlannedEffort float64 `json:"planned_effort"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermScheduleManage) {
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	task, err := s.schedule.CreateTask(r.Context(), domain.Task{
		ScheduleID:    chi.URLParam(r, "scheduleID"),
		ParentTaskID:  req.ParentTaskID,
		WBSCode:       req.WBSCode,
		PlannedStart:  parseDate(req.PlannedStart),
		PlannedEnd:    parseDate(req.PlannedEnd),
		Status:        domain.TaskNotStarted,
		PlannedEffort: req.PlannedEffort,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermScheduleRead) {
		return
	}

	list, err := s.stores.ListTasks(r.Context(), chi.URLParam(r, "scheduleID"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

type taskStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermScheduleManage) {
		return
	}

	var req taskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	task, err := s.schedule.UpdateTaskStatus(r.Context(), chi.URLParam(r, "taskID"), domain.TaskStatus(req.Status))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

type taskProgressRequest struct {
	ProgressPct int `json:"progress_pct"`
}

func (s *Server) handleSetTaskProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermScheduleManage) {
		return
	}

	var req taskProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	task, err := s.schedule.SetTaskProgress(r.Context(), chi.URLParam(r, "taskID"), req.ProgressPct)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, task)
}

type createWBSElementRequest struct {
	ParentID               string  `json:"parent_id"`
	Code                   string  `json:"code"`
	Name                   string  `json:"name"`
	SortOrder              int     `json:"sort_order"`
	PlannedEffort          float64 `json:"planned_effort"`
	WorkPackageManager     string  `json:"work_package_manager"`
	DeliverableDescription string  `json:"deliverable_description"`
	AcceptanceCriteria     string  `json:"acceptance_criteria"`
}

func (s *Server) handleCreateWBSElement(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermScheduleManage) {
		return
	}

	var req createWBSElementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	w2, err := s.schedule.CreateWBSElement(r.Context(), domain.WBSElement{
		ProjectID:              chi.URLParam(r, "id"),
		ParentID:               req.ParentID,
		Code:                   req.Code,
		Name:                   req.Name,
		SortOrder:              req.SortOrder,
		PlannedEffort:          req.PlannedEffort,
		WorkPackageManager:     req.WorkPackageManager,
		DeliverableDescription: req.DeliverableDescription,
		AcceptanceCriteria:     req.AcceptanceCriteria,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, w2)
}

type bulkAssignWorkPackageManagersRequest struct {
	Assignments []schedule.WorkPackageManagerAssignment `json:"assignments"`
}

func (s *Server) handleBulkAssignWorkPackageManagers(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermScheduleManage) {
		return
	}

	var req bulkAssignWorkPackageManagersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	result, err := s.schedule.BulkAssignWorkPackageManagers(r.Context(), req.Assignments)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleListWBSElements(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermScheduleRead) {
		return
	}

	list, err := s.stores.ListWBSElements(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (s *Server) handleValidateWBS(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermScheduleRead) {
		return
	}

	issues, err := s.schedule.ValidateStructure(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, issues)
}

type moveWBSElementRequest struct {
	NewParentID string `json:"new_parent_id"`
	NewSortOrder int   `json:"new_sort_order"`
}

func (s *Server) handleMoveWBSElement(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermScheduleManage) {
		return
	}

	var req moveWBSElementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	if err := s.schedule.MoveWBSElement(r.Context(), chi.URLParam(r, "wbsID"), req.NewParentID, req.NewSortOrder); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
