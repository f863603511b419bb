package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

type ragQueryRequest struct {
	Query          string `json:"query"`
	ConversationID string `json:"conversation_id"`
}

func (s *Server) handleRAGQuery(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermAIQuery) {
		return
	}

	var req ragQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	resp, err := s.ragEngine.ProcessRAGQuery(r.Context(), req.Query, userID, req.ConversationID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, resp)
}

type aiFeedbackRequest struct {
	OperationID  string `json:"operation_id"`
	Rating       int    `json:"rating"`
	FeedbackType string `json:"feedback_type"`
	Text         string `json:"text"`
}

func (s *Server) handleAIFeedback(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermAIFeedback) {
		return
	}

	var req aiFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	err := s.opLog.RecordFeedback(r.Context(), domain.Feedback{
		OperationID:  req.OperationID,
		UserID:       userID,
		Rating:       req.Rating,
		FeedbackType: req.FeedbackType,
		Text:         req.Text,
		Timestamp:    time.Now().UTC(),
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAIOperationsSummary(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermAdminAudit) {
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}

	summary, err := s.opLog.Summary(r.Context(), time.Now().Add(-time.Duration(days)*24*time.Hour), r.URL.Query().Get("operation_type"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

func (s *Server) handleIndexProject(w http.ResponseWriter, r *http.Request) {
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
	if err := s.indexer.IndexProject(r.Context(), p); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndexPortfolio(w http.ResponseWriter, r *http.Request) {
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
	if err := s.indexer.IndexPortfolio(r.Context(), p); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndexResource(w http.ResponseWriter, r *http.Request) {
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
	if err := s.indexer.IndexResource(r.Context(), res); err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type createABTestRequest struct {
	ModelAID        string  `json:"model_a_id"`
	ModelBID        string  `json:"model_b_id"`
	OperationType   string  `json:"operation_type"`
	TrafficSplit    float64 `json:"traffic_split"`
	DurationSeconds int64   `json:"duration_seconds"`
}

func (s *Server) handleCreateABTest(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermAdminUsers) {
		return
	}

	var req createABTestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	test, err := s.abService.CreateTest(r.Context(), req.ModelAID, req.ModelBID, req.OperationType, req.TrafficSplit, time.Duration(req.DurationSeconds)*time.Second)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, test)
}

func (s *Server) handleABTestAnalysis(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermAdminUsers) {
		return
	}

	analysis, err := s.abService.AnalyzeResults(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, analysis)
}
