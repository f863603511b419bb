package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

type createPortfolioRequest struct {
	Name    string `json:"name"`
	OwnerID string `json:"owner_id"`
}

func (s *Server) handleCreatePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermPortfolioCreate) {
		return
	}

	var req createPortfolioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	p, err := s.stores.CreatePortfolio(r.Context(), domain.Portfolio{Name: req.Name, OwnerID: req.OwnerID})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, p)
}

func (s *Server) handleListPortfolios(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermPortfolioRead) {
		return
	}

	list, err := s.stores.ListPortfolios(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetPortfolio(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermPortfolioRead) {
		return
	}

	p, err := s.stores.GetPortfolio(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, p)
}

func (s *Server) handleComprehensiveReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermFinancialRead) {
		return
	}

	includeTrends := r.URL.Query().Get("include_trends") == "true"
	report, err := s.budget.ComprehensiveReport(r.Context(), chi.URLParam(r, "id"), includeTrends)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, report)
}
