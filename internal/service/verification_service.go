package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ferrgo/kestrel/internal/analytics"
	"github.com/ferrgo/kestrel/internal/database"
	"github.com/ferrgo/kestrel/internal/model"
	"github.com/ferrgo/kestrel/internal/privacy"
)

// ServiceEvent is one verified cleaning reported by the verification pipeline
type ServiceEvent struct {
	ServicedAt   time.Time              `json:"serviced_at"`
	CleanerName  string                 `json:"cleaner_name,omitempty"`
	CleanerEmail string                 `json:"cleaner_email,omitempty"`
	Notes        string                 `json:"notes,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

// VerificationService ingests verified service events: it appends the service
// log, advances the checkpoint's denormalized last-cleaned marker (monotonic,
// stale events never roll it back), resets status to CLEAN, and mirrors a
// sanitized projection to the analytics warehouse fire-and-forget.
type VerificationService struct {
	checkpoints *database.CheckpointRepository
	logs        *database.ServiceLogRepository
	sanitizer   privacy.Sanitizer
	sink        analytics.Sink
}

// NewVerificationService creates a new verification service
func NewVerificationService(
	checkpoints *database.CheckpointRepository,
	logs *database.ServiceLogRepository,
	sanitizer privacy.Sanitizer,
	sink analytics.Sink,
) *VerificationService {
	return &VerificationService{
		checkpoints: checkpoints,
		logs:        logs,
		sanitizer:   sanitizer,
		sink:        sink,
	}
}

// RecordService processes one verified service event for a checkpoint
func (s *VerificationService) RecordService(ctx context.Context, checkpointID string, event ServiceEvent) (*model.ServiceLog, error) {
	objID, err := primitive.ObjectIDFromHex(checkpointID)
	if err != nil {
		return nil, fmt.Errorf("invalid checkpoint ID: %w", err)
	}

	checkpoint, err := s.checkpoints.GetByID(ctx, objID)
	if err != nil {
		return nil, err
	}

	servicedAt := event.ServicedAt
	if servicedAt.IsZero() {
		servicedAt = time.Now().UTC()
	}
	servicedAt = servicedAt.UTC()

	log := &model.ServiceLog{
		CheckpointID: checkpoint.ID,
		BuildingID:   checkpoint.BuildingID,
		CleanerName:  event.CleanerName,
		CleanerEmail: event.CleanerEmail,
		Notes:        event.Notes,
		Metadata:     event.Metadata,
		ServicedAt:   servicedAt,
		Verified:     true,
	}
	if err := log.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// The log is append-only history; even a stale event is kept
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, err
	}

	advanced, err := s.checkpoints.RecordService(ctx, checkpoint.ID, servicedAt)
	if err != nil {
		return nil, err
	}
	if !advanced {
		slog.Warn("Stale service event, checkpoint marker not advanced",
			"checkpoint_id", checkpoint.ID.Hex(),
			"serviced_at", servicedAt.Format(time.RFC3339),
			"last_cleaned_at", checkpoint.LastCleanedAt,
		)
	}

	// Mirror fire-and-forget; delivery failures never surface to the caller
	go s.mirror(*log)

	return log, nil
}

// mirror sanitizes and ships one record to the warehouse
func (s *VerificationService) mirror(log model.ServiceLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	record := s.sanitizer.Sanitize(log)
	if err := s.sink.Mirror(ctx, record); err != nil {
		slog.Error("Failed to mirror service record to warehouse",
			"checkpoint_id", record.CheckpointID,
			"error", err,
		)
	}
}

// History retrieves the service log for a checkpoint, newest first
func (s *VerificationService) History(ctx context.Context, checkpointID string, page, limit int) ([]model.ServiceLog, int64, error) {
	objID, err := primitive.ObjectIDFromHex(checkpointID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid checkpoint ID: %w", err)
	}

	return s.logs.ListByCheckpoint(ctx, objID, page, limit)
}
