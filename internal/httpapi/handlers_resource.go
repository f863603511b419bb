package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

type createResourceRequest struct {
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Role        string   `json:"role"`
	CapacityHrs int      `json:"capacity_hrs"`
	Skills      []string `json:"skills"`
	Location    string   `json:"location"`
	HourlyRate  string   `json:"hourly_rate"`
}

func (s *Server) handleCreateResource(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermResourceManage) {
		return
	}

	var req createResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}
	rate := decimal.Zero
	if req.HourlyRate != "" {
		parsed, err := decimal.NewFromString(req.HourlyRate)
		if err != nil {
			WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "hourly_rate must be a decimal string", nil)
			return
		}
		rate = parsed
	}

	res, err := s.stores.CreateResource(r.Context(), domain.Resource{
		Name:         req.Name,
		Email:        req.Email,
		Role:         req.Role,
		CapacityHrs:  req.CapacityHrs,
		Availability: 100,
		Skills:       req.Skills,
		Location:     req.Location,
		HourlyRate:   rate,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}

	if s.indexer != nil {
		_ = s.indexer.IndexResource(r.Context(), res)
	}
	WriteJSON(w, http.StatusCreated, res)
}

func (s *Server) handleListResources(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermResourceRead) {
		return
	}

	list, err := s.stores.ListResources(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetResource(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermResourceRead) {
		return
	}

	res, err := s.stores.GetResource(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, res)
}

type matchSkillsRequest struct {
	Requirements map[string][]string `json:"requirements"`
}

func (s *Server) handleMatchSkills(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermResourceRead) {
		return
	}

	var req matchSkillsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	matches, err := s.advisor.MatchSkills(r.Context(), req.Requirements)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, matches)
}

func (s *Server) handleDetectConflicts(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermResourceRead) {
		return
	}

	conflicts, err := s.advisor.DetectConflicts(r.Context())
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, conflicts)
}
