package watchdog

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ferrgo/kestrel/internal/model"
)

type mockCommitter struct {
	batches [][]model.Alert
	raced   map[primitive.ObjectID]struct{}
	failAt  int // 1-based batch index that fails; 0 never fails
}

func (m *mockCommitter) InsertAlerts(ctx context.Context, alerts []model.Alert) (int, int, error) {
	m.batches = append(m.batches, alerts)
	if m.failAt > 0 && len(m.batches) == m.failAt {
		return 0, 0, errors.New("write concern error")
	}

	raced := 0
	for _, a := range alerts {
		if _, ok := m.raced[a.CheckpointID]; ok {
			raced++
		}
	}
	return len(alerts) - raced, raced, nil
}

type mockMarker struct {
	batches [][]primitive.ObjectID
	failAt  int
}

func (m *mockMarker) MarkOverdue(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	m.batches = append(m.batches, ids)
	if m.failAt > 0 && len(m.batches) == m.failAt {
		return 0, errors.New("update failed")
	}
	return int64(len(ids)), nil
}

func TestWriterBuildAlert(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	writer := NewWriter(&mockCommitter{}, &mockMarker{}, 500, model.AlertSeverityHigh)

	cp := model.Checkpoint{
		ID:                   primitive.NewObjectID(),
		BuildingID:           "bld-hospital",
		Name:                 "ICU Corridor",
		IsActive:             true,
		LastCleanedTimestamp: now.Add(-5 * time.Hour),
		LastCleanedAt:        now.Add(-5 * time.Hour).Format(time.RFC3339),
	}

	alert := writer.BuildAlert(now, cp, 4*time.Hour)

	if alert.Type != model.AlertTypeMissingClean {
		t.Errorf("Type = %q, want %q", alert.Type, model.AlertTypeMissingClean)
	}
	if alert.Status != model.AlertStatusOpen {
		t.Errorf("Status = %q, want %q", alert.Status, model.AlertStatusOpen)
	}
	if alert.Severity != model.AlertSeverityHigh {
		t.Errorf("Severity = %q, want %q", alert.Severity, model.AlertSeverityHigh)
	}
	if alert.CheckpointID != cp.ID {
		t.Errorf("CheckpointID = %v, want %v", alert.CheckpointID, cp.ID)
	}
	if alert.BuildingID != "bld-hospital" {
		t.Errorf("BuildingID = %q, want %q", alert.BuildingID, "bld-hospital")
	}
	if alert.Details.HoursOverdue != 5.00 {
		t.Errorf("Details.HoursOverdue = %v, want 5.00", alert.Details.HoursOverdue)
	}
	if alert.Details.SLAThresholdHours != 4 {
		t.Errorf("Details.SLAThresholdHours = %d, want 4", alert.Details.SLAThresholdHours)
	}
	if alert.LastCleanedAt == "" {
		t.Error("LastCleanedAt should carry the last verified service time")
	}
	if !alert.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", alert.CreatedAt, now)
	}
}

func TestWriterBuildAlertNeverCleaned(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	writer := NewWriter(&mockCommitter{}, &mockMarker{}, 500, model.AlertSeverityHigh)

	cp := model.Checkpoint{
		ID:         primitive.NewObjectID(),
		BuildingID: "bld-1",
		Name:       "Lobby",
		IsActive:   true,
	}

	alert := writer.BuildAlert(now, cp, 24*time.Hour)

	if alert.Details.HoursOverdue != 0 {
		t.Errorf("Details.HoursOverdue = %v, want 0 for never-serviced checkpoint", alert.Details.HoursOverdue)
	}
	if alert.LastCleanedAt != "" {
		t.Errorf("LastCleanedAt = %q, want empty for never-serviced checkpoint", alert.LastCleanedAt)
	}
}

func TestWriterCommitAlertsBatching(t *testing.T) {
	committer := &mockCommitter{}
	writer := NewWriter(committer, &mockMarker{}, 500, "")

	alerts := make([]model.Alert, 1203)
	for i := range alerts {
		alerts[i] = model.Alert{ID: primitive.NewObjectID(), CheckpointID: primitive.NewObjectID()}
	}

	created, raced, err := writer.CommitAlerts(context.Background(), alerts)
	if err != nil {
		t.Fatalf("CommitAlerts() error = %v", err)
	}
	if created != 1203 || raced != 0 {
		t.Errorf("created = %d, raced = %d, want 1203, 0", created, raced)
	}

	if len(committer.batches) != 3 {
		t.Fatalf("expected 3 batches for 1203 alerts at limit 500, got %d", len(committer.batches))
	}
	for i, wantLen := range []int{500, 500, 203} {
		if len(committer.batches[i]) != wantLen {
			t.Errorf("batch %d has %d alerts, want %d", i, len(committer.batches[i]), wantLen)
		}
	}
}

func TestWriterCommitAlertsCountsRaced(t *testing.T) {
	racedID := primitive.NewObjectID()
	committer := &mockCommitter{raced: map[primitive.ObjectID]struct{}{racedID: {}}}
	writer := NewWriter(committer, &mockMarker{}, 500, "")

	alerts := []model.Alert{
		{ID: primitive.NewObjectID(), CheckpointID: primitive.NewObjectID()},
		{ID: primitive.NewObjectID(), CheckpointID: racedID},
	}

	created, raced, err := writer.CommitAlerts(context.Background(), alerts)
	if err != nil {
		t.Fatalf("CommitAlerts() error = %v", err)
	}
	if created != 1 || raced != 1 {
		t.Errorf("created = %d, raced = %d, want 1, 1", created, raced)
	}
}

func TestWriterCommitAlertsFailureAborts(t *testing.T) {
	committer := &mockCommitter{failAt: 2}
	writer := NewWriter(committer, &mockMarker{}, 500, "")

	alerts := make([]model.Alert, 1100)
	for i := range alerts {
		alerts[i] = model.Alert{ID: primitive.NewObjectID(), CheckpointID: primitive.NewObjectID()}
	}

	created, _, err := writer.CommitAlerts(context.Background(), alerts)
	if err == nil {
		t.Fatal("expected error when a batch fails")
	}
	if created != 500 {
		t.Errorf("created = %d, want 500 (first batch only)", created)
	}
	if len(committer.batches) != 2 {
		t.Errorf("expected commit to stop at the failing batch, got %d batches", len(committer.batches))
	}
}

func TestWriterMarkOverdueBatching(t *testing.T) {
	marker := &mockMarker{}
	writer := NewWriter(&mockCommitter{}, marker, 500, "")

	ids := make([]primitive.ObjectID, 501)
	for i := range ids {
		ids[i] = primitive.NewObjectID()
	}

	updated, err := writer.MarkOverdue(context.Background(), ids)
	if err != nil {
		t.Fatalf("MarkOverdue() error = %v", err)
	}
	if updated != 501 {
		t.Errorf("updated = %d, want 501", updated)
	}
	if len(marker.batches) != 2 {
		t.Errorf("expected 2 batches for 501 ids at limit 500, got %d", len(marker.batches))
	}
}
