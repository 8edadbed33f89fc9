package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ferrgo/kestrel/internal/model"
	"github.com/ferrgo/kestrel/internal/service"
)

// AlertHandler handles alert queries and acknowledgements
type AlertHandler struct {
	service *service.AlertService
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(service *service.AlertService) *AlertHandler {
	return &AlertHandler{
		service: service,
	}
}

// AlertListResponse represents alert list response
type AlertListResponse struct {
	Total   int64                `json:"total"`
	Page    int                  `json:"page"`
	Limit   int                  `json:"limit"`
	Results []model.AlertSummary `json:"results"`
}

// List handles GET /api/v1/alerts
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	buildingID := r.URL.Query().Get("building_id")
	checkpointID := r.URL.Query().Get("checkpoint_id")
	status := r.URL.Query().Get("status")
	from := r.URL.Query().Get("from")
	to := r.URL.Query().Get("to")
	page := parseQueryInt(r, "page", 1)
	limit := parseQueryInt(r, "limit", 20)

	if limit > 100 {
		limit = 100
	}

	summaries, total, err := h.service.List(r.Context(), buildingID, checkpointID, status, from, to, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, AlertListResponse{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Results: summaries,
	})
}

// AcknowledgeRequest represents the acknowledge alert request
type AcknowledgeRequest struct {
	AcknowledgedBy string `json:"acknowledged_by"`
}

// Acknowledge handles PATCH /api/v1/alerts/{id}/acknowledge
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/alerts/")
	alertID := strings.TrimSuffix(path, "/acknowledge")

	if alertID == "" {
		writeError(w, http.StatusBadRequest, "alert ID is required")
		return
	}

	var req AcknowledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AcknowledgedBy == "" {
		writeError(w, http.StatusBadRequest, "acknowledged_by is required")
		return
	}

	err := h.service.Acknowledge(r.Context(), alertID, req.AcknowledgedBy)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if strings.Contains(err.Error(), "invalid alert ID") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "alert acknowledged successfully",
	})
}
