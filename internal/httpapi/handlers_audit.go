package middleware

import (
	"net/http"
	"strconv"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
)

func (s *Server) daysParam(r *http.Request) int {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			days = n
		}
	}
	return days
}

func (s *Server) handleAuditStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermAdminAudit) {
		return
	}

	stats, err := s.audit.Statistics(r.Context(), s.daysParam(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAuditImports(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermAdminAudit) {
		return
	}

	imports, err := s.audit.Imports(r.Context(), s.daysParam(r))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, imports)
}

func (s *Server) handleAuditEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermAdminAudit) {
		return
	}

	events, err := s.audit.Events(r.Context(), s.daysParam(r), r.URL.Query().Get("event_type"))
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, events)
}
