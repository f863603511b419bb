package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

type createProjectRequest struct {
	PortfolioID string   `json:"portfolio_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Budget      string   `json:"budget"`
	TeamMembers []string `json:"team_members"`
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermProjectCreate) {
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}
	budget, err := decimal.NewFromString(req.Budget)
	if err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "budget must be a decimal string", nil)
		return
	}

	p, err := s.stores.CreateProject(r.Context(), domain.Project{
		PortfolioID: req.PortfolioID,
		Name:        req.Name,
		Description: req.Description,
		Status:      domain.ProjectPlanning,
		Priority:    req.Priority,
		Budget:      budget,
		Health:      domain.HealthGreen,
		TeamMembers: req.TeamMembers,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if s.indexer != nil {
		_ = s.indexer.IndexProject(r.Context(), p)
	}
	WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermProjectRead) {
		return
	}

	list, err := s.stores.ListProjects(r.Context(), r.URL.Query().Get("portfolio_id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermProjectRead) {
		return
	}

	p, err := s.stores.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handleProjectVariance(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermFinancialRead) {
		return
	}

	fact, err := s.variance.ProjectSummary(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, fact)
}

func (s *Server) handleWBSVariance(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermFinancialRead) {
		return
	}

	fact, err := s.variance.WBSDetails(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "wbs"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, fact)
}

func (s *Server) handleBudgetVariance(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermFinancialRead) {
		return
	}

	v, err := s.budget.BudgetVarianceFor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, v)
}

func (s *Server) handleSimulateCompletionCost(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermFinancialRead) {
		return
	}

	iterations := 1000
	if raw := r.URL.Query().Get("iterations"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			iterations = n
		}
	}

	estimate, err := s.budget.SimulateCompletionCost(r.Context(), chi.URLParam(r, "id"), iterations)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, estimate)
}
