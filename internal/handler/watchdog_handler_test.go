package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ferrgo/kestrel/internal/scheduler"
	"github.com/ferrgo/kestrel/internal/watchdog"
)

type mockRunner struct {
	report *watchdog.Report
	err    error
}

func (m *mockRunner) RunNow(ctx context.Context) (*watchdog.Report, error) {
	return m.report, m.err
}

func TestWatchdogHandlerRun(t *testing.T) {
	handler := NewWatchdogHandler(&mockRunner{
		report: &watchdog.Report{
			RunID:         "run-1",
			Stage:         watchdog.StageDone,
			Overdue:       3,
			AlertsCreated: 3,
		},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/watchdog/run", nil)
	rec := httptest.NewRecorder()
	handler.Run(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var report watchdog.Report
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if report.Stage != watchdog.StageDone || report.AlertsCreated != 3 {
		t.Errorf("report = %+v, want stage done with 3 alerts", report)
	}
}

func TestWatchdogHandlerRunConflict(t *testing.T) {
	handler := NewWatchdogHandler(&mockRunner{err: scheduler.ErrSweepInFlight})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/watchdog/run", nil)
	rec := httptest.NewRecorder()
	handler.Run(rec, req)

	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want %d when a sweep is in flight", rec.Code, http.StatusConflict)
	}
}

func TestWatchdogHandlerRunFailureCarriesReport(t *testing.T) {
	handler := NewWatchdogHandler(&mockRunner{
		report: &watchdog.Report{
			RunID:         "run-1",
			Stage:         watchdog.StageUpdateStatus,
			AlertsCreated: 2,
		},
		err: errors.New("update timeout"),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/watchdog/run", nil)
	rec := httptest.NewRecorder()
	handler.Run(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}

	var body struct {
		Error  string          `json:"error"`
		Report watchdog.Report `json:"report"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Report.AlertsCreated != 2 {
		t.Errorf("partial report AlertsCreated = %d, want 2", body.Report.AlertsCreated)
	}
	if body.Report.Stage != watchdog.StageUpdateStatus {
		t.Errorf("partial report Stage = %q, want %q", body.Report.Stage, watchdog.StageUpdateStatus)
	}
}
