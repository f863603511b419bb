package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/Stefan/ppm-saas-sub001/internal/domain"
	"github.com/Stefan/ppm-saas-sub001/internal/importengine"
)

type rawActualRequest struct {
	FIDocNo           string `json:"fi_doc_no"`
	PostingDate       string `json:"posting_date"`
	DocumentDate      string `json:"document_date"`
	Vendor            string `json:"vendor"`
	VendorDescription string `json:"vendor_description"`
	ProjectNr         string `json:"project_nr"`
	WBSElement        string `json:"wbs_element"`
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	DocumentType      string `json:"document_type"`
	ItemText          string `json:"item_text"`
	CostCenter        string `json:"cost_center"`
}

type importActualsRequest struct {
	Rows      []rawActualRequest `json:"rows"`
	Anonymize bool               `json:"anonymize"`
}

func (s *Server) handleImportActuals(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermFinancialImport) {
		return
	}

	var req importActualsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	rows := make([]importengine.RawActual, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, importengine.RawActual{
			FIDocNo:           row.FIDocNo,
			PostingDate:       parseDate(row.PostingDate),
			DocumentDate:      parseDate(row.DocumentDate),
			Vendor:            row.Vendor,
			VendorDescription: row.VendorDescription,
			ProjectNr:         row.ProjectNr,
			WBSElement:        row.WBSElement,
			Amount:            row.Amount,
			Currency:          row.Currency,
			DocumentType:      row.DocumentType,
			ItemText:          row.ItemText,
			CostCenter:        row.CostCenter,
		})
	}

	result, err := s.importEngine.ImportActuals(r.Context(), userID, rows, req.Anonymize)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

type rawCommitmentRequest struct {
	PONumber          string `json:"po_number"`
	POLineNr          int    `json:"po_line_nr"`
	PODate            string `json:"po_date"`
	Vendor            string `json:"vendor"`
	VendorDescription string `json:"vendor_description"`
	ProjectNr         string `json:"project_nr"`
	WBSElement        string `json:"wbs_element"`
	PONetAmount       string `json:"po_net_amount"`
	TotalAmount       string `json:"total_amount"`
	Currency          string `json:"currency"`
	POStatus          string `json:"po_status"`
	CostCenter        string `json:"cost_center"`
}

type importCommitmentsRequest struct {
	Rows      []rawCommitmentRequest `json:"rows"`
	Anonymize bool                   `json:"anonymize"`
}

func (s *Server) handleImportCommitments(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermFinancialImport) {
		return
	}

	var req importCommitmentsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	rows := make([]importengine.RawCommitment, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, importengine.RawCommitment{
			PONumber:          row.PONumber,
			POLineNr:          row.POLineNr,
			PODate:            parseDate(row.PODate),
			Vendor:            row.Vendor,
			VendorDescription: row.VendorDescription,
			ProjectNr:         row.ProjectNr,
			WBSElement:        row.WBSElement,
			PONetAmount:       row.PONetAmount,
			TotalAmount:       row.TotalAmount,
			Currency:          row.Currency,
			POStatus:          row.POStatus,
			CostCenter:        row.CostCenter,
		})
	}

	result, err := s.importEngine.ImportCommitments(r.Context(), userID, rows, req.Anonymize)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, result)
}

func parseDate(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}
	}
	return t
}

type createThresholdRuleRequest struct {
	Name                 string   `json:"name"`
	OrganizationID       string   `json:"organization_id"`
	Scope                string   `json:"scope"`
	ProjectID            string   `json:"project_id"`
	ThresholdPct         string   `json:"threshold_pct"`
	Severity             string   `json:"severity"`
	NotificationChannels []string `json:"notification_channels"`
	Recipients           []string `json:"recipients"`
	CooldownSeconds      int64    `json:"cooldown_seconds"`
	Enabled              bool     `json:"enabled"`
}

func (s *Server) handleCreateThresholdRule(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermFinancialManage) {
		return
	}

	var req createThresholdRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}
	pct, err := decimal.NewFromString(req.ThresholdPct)
	if err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "threshold_pct must be a decimal string", nil)
		return
	}

	rule, err := s.stores.CreateRule(r.Context(), domain.ThresholdRule{
		Name:                 req.Name,
		OrganizationID:       req.OrganizationID,
		Scope:                req.Scope,
		ProjectID:            req.ProjectID,
		ThresholdPct:         pct,
		Severity:             domain.Severity(req.Severity),
		NotificationChannels: req.NotificationChannels,
		Recipients:           req.Recipients,
		Cooldown:             time.Duration(req.CooldownSeconds) * time.Second,
		Enabled:              req.Enabled,
	})
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, rule)
}

type checkThresholdsRequest struct {
	OrganizationID string   `json:"organization_id"`
	ProjectIDs     []string `json:"project_ids"`
}

func (s *Server) handleCheckThresholds(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermFinancialRead) {
		return
	}

	var req checkThresholdsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteErrorResponse(w, r, http.StatusBadRequest, "invalid_body", "invalid request body", nil)
		return
	}

	alerts, err := s.variance.CheckThresholds(r.Context(), req.OrganizationID, req.ProjectIDs)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermFinancialManage) {
		return
	}

	alert, err := s.variance.Acknowledge(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, alert)
}

func (s *Server) handleResolveAlert(w http.ResponseWriter, r *http.Request) {
	userID, ok := RequireUserID(w, r)
	if !ok {
		return
	}
	if !s.requirePermission(w, r, userID, domain.PermFinancialManage) {
		return
	}

	alert, err := s.variance.Resolve(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		WriteError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, alert)
}
