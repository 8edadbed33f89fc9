package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/ferrgo/kestrel/internal/model"
	"github.com/ferrgo/kestrel/internal/service"
)

// PolicyHandler handles per-building SLA policy reads and updates
type PolicyHandler struct {
	service *service.PolicyService
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(service *service.PolicyService) *PolicyHandler {
	return &PolicyHandler{
		service: service,
	}
}

// Get handles GET /api/v1/buildings/{id}/policy
func (h *PolicyHandler) Get(w http.ResponseWriter, r *http.Request) {
	buildingID := buildingIDFromPath(r.URL.Path)
	if buildingID == "" {
		writeError(w, http.StatusBadRequest, "building ID is required")
		return
	}

	policy, err := h.service.Effective(r.Context(), buildingID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, policy)
}

// Set handles PUT /api/v1/buildings/{id}/policy
func (h *PolicyHandler) Set(w http.ResponseWriter, r *http.Request) {
	buildingID := buildingIDFromPath(r.URL.Path)
	if buildingID == "" {
		writeError(w, http.StatusBadRequest, "building ID is required")
		return
	}

	var policy model.SLAPolicy
	if err := json.NewDecoder(r.Body).Decode(&policy); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	policy.BuildingID = buildingID

	if err := h.service.Set(r.Context(), &policy); err != nil {
		if strings.Contains(err.Error(), "validation failed") {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, policy)
}

// buildingIDFromPath extracts the building ID from /api/v1/buildings/{id}/policy
func buildingIDFromPath(path string) string {
	trimmed := strings.TrimPrefix(path, "/api/v1/buildings/")
	return strings.TrimSuffix(trimmed, "/policy")
}
