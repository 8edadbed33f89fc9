package watchdog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ferrgo/kestrel/internal/model"
)

// Pipeline stages, in execution order. A sweep either reaches a terminal
// stage (done, done_empty, done_all_duplicate) or fails at the stage named in
// the report.
const (
	StageThreshold    = "threshold"
	StageQuery        = "query"
	StageDedup        = "dedup"
	StageWriteAlerts  = "write_alerts"
	StageUpdateStatus = "update_status"
	StageDone         = "done"
	StageDoneEmpty    = "done_empty"
	StageDoneAllDup   = "done_all_duplicate"
)

// CheckpointStore is the checkpoint capability the watchdog needs
type CheckpointStore interface {
	FindOverdue(ctx context.Context, cutoff time.Time) ([]model.Checkpoint, error)
	StatusMarker
}

// AlertStore is the alert capability the watchdog needs
type AlertStore interface {
	OpenAlertFinder
	AlertCommitter
}

// PolicyStore loads the per-building SLA overrides
type PolicyStore interface {
	ListAll(ctx context.Context) ([]model.SLAPolicy, error)
}

// Limits carries the backing store's platform ceilings
type Limits struct {
	DedupChunkSize  int // max ids per membership-test query
	BatchWriteLimit int // max operations per write batch
}

// Report summarizes one sweep for logging and the on-demand API
type Report struct {
	RunID         string        `json:"run_id"`
	Stage         string        `json:"stage"`
	Overdue       int           `json:"overdue"`
	NeedingAlert  int           `json:"needing_alert"`
	AlertsCreated int           `json:"alerts_created"`
	AlertsRaced   int           `json:"alerts_raced"`
	StatusUpdated int64         `json:"status_updated"`
	Duration      time.Duration `json:"-"`
	DurationMs    int64         `json:"duration_ms"`
}

// Watchdog is the compliance sweep orchestrator. Each invocation runs the
// pipeline threshold → query → dedup → write alerts → update status, strictly
// sequentially, with no internal retries; the scheduler's next tick is the
// retry mechanism.
type Watchdog struct {
	checkpoints CheckpointStore
	alerts      AlertStore
	policies    PolicyStore
	defaultGap  time.Duration
	limits      Limits
	severity    string
	now         func() time.Time
}

// New creates a watchdog
func New(checkpoints CheckpointStore, alerts AlertStore, policies PolicyStore, defaultGap time.Duration, limits Limits, severity string) *Watchdog {
	return &Watchdog{
		checkpoints: checkpoints,
		alerts:      alerts,
		policies:    policies,
		defaultGap:  defaultGap,
		limits:      limits,
		severity:    severity,
		now:         time.Now,
	}
}

// Run executes one compliance sweep. The returned report is populated with
// the counts accumulated up to the point of success or failure.
func (w *Watchdog) Run(ctx context.Context, runID string) (*Report, error) {
	// now is captured once so the cutoff is consistent across the whole batch
	now := w.now().UTC()
	start := time.Now()

	report := &Report{RunID: runID}
	defer func() {
		report.Duration = time.Since(start)
		report.DurationMs = report.Duration.Milliseconds()
	}()

	// Threshold: resolve policies and compute the scan cutoff
	overrides, err := w.policies.ListAll(ctx)
	if err != nil {
		report.Stage = StageThreshold
		return report, fmt.Errorf("failed to load SLA policies: %w", err)
	}
	resolver := NewPolicyResolver(w.defaultGap, overrides)
	scanCutoff := Cutoff(now, resolver.ScanWindow())

	// Query: one indexed scan returning a superset of every building's
	// overdue set, then re-check each candidate against its own policy
	candidates, err := w.checkpoints.FindOverdue(ctx, scanCutoff)
	if err != nil {
		report.Stage = StageQuery
		return report, fmt.Errorf("overdue query failed: %w", err)
	}

	overdue := make([]model.Checkpoint, 0, len(candidates))
	for _, cp := range candidates {
		if IsOverdue(now, cp.LastCleanedTimestamp, resolver.Resolve(cp.BuildingID)) {
			overdue = append(overdue, cp)
		}
	}
	report.Overdue = len(overdue)

	if len(overdue) == 0 {
		report.Stage = StageDoneEmpty
		slog.Info("Compliance sweep found no overdue checkpoints",
			"run_id", runID,
			"scanned", len(candidates),
		)
		return report, nil
	}

	// Dedup: drop checkpoints that already have an OPEN breach alert
	dedup := NewDeduplicator(w.alerts, w.limits.DedupChunkSize)
	needing, err := dedup.Filter(ctx, overdue)
	if err != nil {
		report.Stage = StageDedup
		return report, err
	}
	report.NeedingAlert = len(needing)

	if len(needing) == 0 {
		report.Stage = StageDoneAllDup
		slog.Info("Compliance sweep found only already-alerted checkpoints",
			"run_id", runID,
			"overdue", report.Overdue,
		)
		return report, nil
	}

	// Write alerts, then update status. Not mutually atomic: a failure after
	// the alert batches commit leaves checkpoint status stale until the next
	// sweep re-detects and re-marks.
	writer := NewWriter(w.alerts, w.checkpoints, w.limits.BatchWriteLimit, w.severity)

	alerts := make([]model.Alert, len(needing))
	ids := make([]primitive.ObjectID, len(needing))
	for i, cp := range needing {
		alerts[i] = writer.BuildAlert(now, cp, resolver.Resolve(cp.BuildingID))
		ids[i] = cp.ID
	}

	created, raced, err := writer.CommitAlerts(ctx, alerts)
	report.AlertsCreated = created
	report.AlertsRaced = raced
	if err != nil {
		report.Stage = StageWriteAlerts
		return report, err
	}

	updated, err := writer.MarkOverdue(ctx, ids)
	report.StatusUpdated = updated
	if err != nil {
		report.Stage = StageUpdateStatus
		slog.Error("Alerts committed but status update failed; next sweep will re-mark",
			"run_id", runID,
			"alerts_created", created,
			"status_updated", updated,
			"error", err,
		)
		return report, err
	}

	report.Stage = StageDone
	slog.Info("Compliance sweep completed",
		"run_id", runID,
		"overdue", report.Overdue,
		"needing_alert", report.NeedingAlert,
		"alerts_created", report.AlertsCreated,
		"alerts_raced", report.AlertsRaced,
		"status_updated", report.StatusUpdated,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return report, nil
}
