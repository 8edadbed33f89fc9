package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ferrgo/kestrel/internal/model"
	"github.com/ferrgo/kestrel/internal/service"
)

// CheckpointHandler handles checkpoint management and service verification
type CheckpointHandler struct {
	checkpoints  *service.CheckpointService
	verification *service.VerificationService
}

// NewCheckpointHandler creates a new checkpoint handler
func NewCheckpointHandler(checkpoints *service.CheckpointService, verification *service.VerificationService) *CheckpointHandler {
	return &CheckpointHandler{
		checkpoints:  checkpoints,
		verification: verification,
	}
}

// CheckpointListResponse represents checkpoint list response
type CheckpointListResponse struct {
	Total   int64                      `json:"total"`
	Page    int                        `json:"page"`
	Limit   int                        `json:"limit"`
	Results []model.CheckpointListItem `json:"results"`
}

// List handles GET /api/v1/checkpoints
func (h *CheckpointHandler) List(w http.ResponseWriter, r *http.Request) {
	buildingID := r.URL.Query().Get("building_id")
	status := r.URL.Query().Get("status")
	isActive := parseQueryBool(r, "is_active")
	page := parseQueryInt(r, "page", 1)
	limit := parseQueryInt(r, "limit", 20)

	if limit > 100 {
		limit = 100
	}

	items, total, err := h.checkpoints.List(r.Context(), buildingID, status, isActive, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CheckpointListResponse{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Results: items,
	})
}

// Create handles POST /api/v1/checkpoints
func (h *CheckpointHandler) Create(w http.ResponseWriter, r *http.Request) {
	var checkpoint model.Checkpoint
	if err := json.NewDecoder(r.Body).Decode(&checkpoint); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.checkpoints.Create(r.Context(), &checkpoint); err != nil {
		if strings.Contains(err.Error(), "validation failed") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if strings.Contains(err.Error(), "already exists") {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, checkpoint)
}

// Get handles GET /api/v1/checkpoints/{id}
func (h *CheckpointHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/v1/checkpoints/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "checkpoint ID is required")
		return
	}

	checkpoint, err := h.checkpoints.Get(r.Context(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if strings.Contains(err.Error(), "invalid checkpoint ID") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, checkpoint)
}

// RecordService handles POST /api/v1/checkpoints/{id}/service
func (h *CheckpointHandler) RecordService(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/checkpoints/")
	id := strings.TrimSuffix(path, "/service")
	if id == "" {
		writeError(w, http.StatusBadRequest, "checkpoint ID is required")
		return
	}

	var event service.ServiceEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	log, err := h.verification.RecordService(r.Context(), id, event)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if strings.Contains(err.Error(), "invalid checkpoint ID") || strings.Contains(err.Error(), "validation failed") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, log)
}

// ServiceHistoryResponse represents service history response
type ServiceHistoryResponse struct {
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
	Limit   int                `json:"limit"`
	Results []model.ServiceLog `json:"results"`
}

// History handles GET /api/v1/checkpoints/{id}/history
func (h *CheckpointHandler) History(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/checkpoints/")
	id := strings.TrimSuffix(path, "/history")
	if id == "" {
		writeError(w, http.StatusBadRequest, "checkpoint ID is required")
		return
	}

	page := parseQueryInt(r, "page", 1)
	limit := parseQueryInt(r, "limit", 20)
	if limit > 100 {
		limit = 100
	}

	logs, total, err := h.verification.History(r.Context(), id, page, limit)
	if err != nil {
		if strings.Contains(err.Error(), "invalid checkpoint ID") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ServiceHistoryResponse{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Results: logs,
	})
}
