package watchdog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ferrgo/kestrel/internal/model"
)

// AlertCommitter commits one bounded batch of new alerts. Returns the number
// created and the number skipped because a racing sweep already holds the
// OPEN slot for the checkpoint.
type AlertCommitter interface {
	InsertAlerts(ctx context.Context, alerts []model.Alert) (created int, raced int, err error)
}

// StatusMarker transitions one bounded batch of checkpoints to OVERDUE
type StatusMarker interface {
	MarkOverdue(ctx context.Context, ids []primitive.ObjectID) (int64, error)
}

// Writer builds breach alerts and commits them in batches bounded by the
// store's per-batch operation ceiling, then transitions the affected
// checkpoints' status in a second set of bounded batches. The two phases are
// not mutually atomic; a failure between them leaves alerts created with
// stale checkpoint status, healed by the next sweep.
type Writer struct {
	alerts      AlertCommitter
	checkpoints StatusMarker
	batchLimit  int
	severity    string
}

// NewWriter creates a writer with the given per-batch write ceiling
func NewWriter(alerts AlertCommitter, checkpoints StatusMarker, batchLimit int, severity string) *Writer {
	if batchLimit <= 0 {
		batchLimit = 500
	}
	if severity == "" {
		severity = model.AlertSeverityHigh
	}
	return &Writer{
		alerts:      alerts,
		checkpoints: checkpoints,
		batchLimit:  batchLimit,
		severity:    severity,
	}
}

// BuildAlert constructs the OPEN breach alert for a checkpoint, capturing the
// hours overdue and the threshold in force at detection time
func (w *Writer) BuildAlert(now time.Time, cp model.Checkpoint, maxGap time.Duration) model.Alert {
	hoursOverdue := HoursOverdue(now, cp.LastCleanedTimestamp)
	thresholdHours := int(maxGap / time.Hour)

	lastCleanedAt := cp.LastCleanedAt
	message := fmt.Sprintf("Checkpoint %q in building %s has not been cleaned for %.2f hours (SLA threshold: %d hours)",
		cp.Name, cp.BuildingID, hoursOverdue, thresholdHours)
	if cp.NeverCleaned() {
		lastCleanedAt = ""
		message = fmt.Sprintf("Checkpoint %q in building %s has never been cleaned (SLA threshold: %d hours)",
			cp.Name, cp.BuildingID, thresholdHours)
	}

	return model.Alert{
		ID:           primitive.NewObjectID(),
		BuildingID:   cp.BuildingID,
		CheckpointID: cp.ID,
		Type:         model.AlertTypeMissingClean,
		Severity:     w.severity,
		Status:       model.AlertStatusOpen,
		Message:      message,
		Details: model.AlertDetails{
			HoursOverdue:      hoursOverdue,
			SLAThresholdHours: thresholdHours,
		},
		LastCleanedAt: lastCleanedAt,
		CreatedAt:     now,
	}
}

// CommitAlerts writes the alerts as sequential batches no larger than the
// store's ceiling. The first failing batch aborts the remainder.
func (w *Writer) CommitAlerts(ctx context.Context, alerts []model.Alert) (int, int, error) {
	created, raced := 0, 0

	for start := 0; start < len(alerts); start += w.batchLimit {
		end := start + w.batchLimit
		if end > len(alerts) {
			end = len(alerts)
		}

		batchCreated, batchRaced, err := w.alerts.InsertAlerts(ctx, alerts[start:end])
		created += batchCreated
		raced += batchRaced
		if err != nil {
			return created, raced, fmt.Errorf("alert batch commit failed: %w", err)
		}
	}

	return created, raced, nil
}

// MarkOverdue transitions checkpoint status in sequential bounded batches
func (w *Writer) MarkOverdue(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	var updated int64

	for start := 0; start < len(ids); start += w.batchLimit {
		end := start + w.batchLimit
		if end > len(ids) {
			end = len(ids)
		}

		n, err := w.checkpoints.MarkOverdue(ctx, ids[start:end])
		updated += n
		if err != nil {
			return updated, fmt.Errorf("status batch update failed: %w", err)
		}
	}

	return updated, nil
}
