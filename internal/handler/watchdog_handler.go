package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/ferrgo/kestrel/internal/scheduler"
	"github.com/ferrgo/kestrel/internal/watchdog"
)

// SweepRunner triggers an on-demand compliance sweep
type SweepRunner interface {
	RunNow(ctx context.Context) (*watchdog.Report, error)
}

// WatchdogHandler handles on-demand watchdog invocations
type WatchdogHandler struct {
	runner SweepRunner
}

// NewWatchdogHandler creates a new watchdog handler
func NewWatchdogHandler(runner SweepRunner) *WatchdogHandler {
	return &WatchdogHandler{
		runner: runner,
	}
}

// Run handles POST /api/v1/watchdog/run
func (h *WatchdogHandler) Run(w http.ResponseWriter, r *http.Request) {
	report, err := h.runner.RunNow(r.Context())
	if err != nil {
		if errors.Is(err, scheduler.ErrSweepInFlight) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		// The report carries the counts accumulated before the failure
		if report != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
				"error":  err.Error(),
				"report": report,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, report)
}
