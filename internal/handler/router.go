package handler

import (
	"net/http"
	"strings"

	"github.com/ferrgo/kestrel/pkg/middleware"
)

// Router handles HTTP routing
type Router struct {
	checkpointHandler *CheckpointHandler
	alertHandler      *AlertHandler
	policyHandler     *PolicyHandler
	watchdogHandler   *WatchdogHandler
	healthHandler     *HealthHandler
	corsConfig        middleware.CORSConfig
}

// NewRouter creates a new router
func NewRouter(
	checkpointHandler *CheckpointHandler,
	alertHandler *AlertHandler,
	policyHandler *PolicyHandler,
	watchdogHandler *WatchdogHandler,
	healthHandler *HealthHandler,
	corsConfig middleware.CORSConfig,
) *Router {
	return &Router{
		checkpointHandler: checkpointHandler,
		alertHandler:      alertHandler,
		policyHandler:     policyHandler,
		watchdogHandler:   watchdogHandler,
		healthHandler:     healthHandler,
		corsConfig:        corsConfig,
	}
}

// Handler returns the configured HTTP handler with middleware
func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health endpoints (no middleware)
	mux.HandleFunc("/health", rt.healthHandler.Health)
	mux.HandleFunc("/ready", rt.healthHandler.Ready)

	// API endpoints
	mux.HandleFunc("/api/v1/checkpoints", rt.handleCheckpoints)
	mux.HandleFunc("/api/v1/checkpoints/", rt.handleCheckpointsWithID)
	mux.HandleFunc("/api/v1/alerts", rt.alertHandler.List)
	mux.HandleFunc("/api/v1/alerts/", rt.handleAlertsWithID)
	mux.HandleFunc("/api/v1/buildings/", rt.handleBuildings)
	mux.HandleFunc("/api/v1/watchdog/run", rt.handleWatchdogRun)

	// Apply middleware (CORS first to handle preflight requests)
	handler := middleware.CORS(rt.corsConfig)(mux)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(handler)
	handler = middleware.CorrelationID(handler)

	return handler
}

// handleCheckpoints routes checkpoint collection endpoints
func (rt *Router) handleCheckpoints(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rt.checkpointHandler.List(w, r)
	case http.MethodPost:
		rt.checkpointHandler.Create(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleCheckpointsWithID routes checkpoint individual endpoints
func (rt *Router) handleCheckpointsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/checkpoints/")

	if strings.HasSuffix(path, "/service") {
		if r.Method != http.MethodPost && r.Method != http.MethodOptions {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		rt.checkpointHandler.RecordService(w, r)
		return
	}

	if strings.HasSuffix(path, "/history") {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		rt.checkpointHandler.History(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		rt.checkpointHandler.Get(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleAlertsWithID routes alert individual endpoints
func (rt *Router) handleAlertsWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/alerts/")

	if strings.HasSuffix(path, "/acknowledge") {
		if r.Method != http.MethodPatch && r.Method != http.MethodOptions {
			writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		rt.alertHandler.Acknowledge(w, r)
		return
	}

	writeError(w, http.StatusNotFound, "Endpoint not found")
}

// handleBuildings routes per-building policy endpoints
func (rt *Router) handleBuildings(w http.ResponseWriter, r *http.Request) {
	if !strings.HasSuffix(r.URL.Path, "/policy") {
		writeError(w, http.StatusNotFound, "Endpoint not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		rt.policyHandler.Get(w, r)
	case http.MethodPut:
		rt.policyHandler.Set(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleWatchdogRun routes the on-demand sweep endpoint
func (rt *Router) handleWatchdogRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	rt.watchdogHandler.Run(w, r)
}
