package service

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ferrgo/kestrel/internal/database"
	"github.com/ferrgo/kestrel/internal/model"
)

// CheckpointService handles checkpoint management
type CheckpointService struct {
	repo *database.CheckpointRepository
}

// NewCheckpointService creates a new checkpoint service
func NewCheckpointService(repo *database.CheckpointRepository) *CheckpointService {
	return &CheckpointService{
		repo: repo,
	}
}

// Create validates and persists a new checkpoint
func (s *CheckpointService) Create(ctx context.Context, checkpoint *model.Checkpoint) error {
	if err := checkpoint.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return s.repo.Create(ctx, checkpoint)
}

// Get retrieves a checkpoint by its hex ID
func (s *CheckpointService) Get(ctx context.Context, id string) (*model.Checkpoint, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid checkpoint ID: %w", err)
	}

	return s.repo.GetByID(ctx, objID)
}

// List retrieves checkpoint summaries with filtering
func (s *CheckpointService) List(ctx context.Context, buildingID, status string, isActive *bool, page, limit int) ([]model.CheckpointListItem, int64, error) {
	filter := bson.M{}

	if buildingID != "" {
		filter["building_id"] = buildingID
	}
	if status != "" {
		filter["current_status"] = status
	}
	if isActive != nil {
		filter["is_active"] = *isActive
	}

	checkpoints, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	items := make([]model.CheckpointListItem, len(checkpoints))
	for i, cp := range checkpoints {
		items[i] = cp.ToListItem()
	}

	return items, total, nil
}
