package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ferrgo/kestrel/internal/database"
	"github.com/ferrgo/kestrel/internal/model"
)

// AlertService handles alert queries and the external acknowledgement workflow
type AlertService struct {
	repo *database.AlertRepository
}

// NewAlertService creates a new alert service
func NewAlertService(repo *database.AlertRepository) *AlertService {
	return &AlertService{
		repo: repo,
	}
}

// List retrieves alert summaries with filtering
func (s *AlertService) List(ctx context.Context, buildingID, checkpointID, status, from, to string, page, limit int) ([]model.AlertSummary, int64, error) {
	filter := bson.M{}

	if buildingID != "" {
		filter["building_id"] = buildingID
	}

	if checkpointID != "" {
		objID, err := primitive.ObjectIDFromHex(checkpointID)
		if err == nil {
			filter["checkpoint_id"] = objID
		}
	}

	if status != "" {
		filter["status"] = status
	}

	if from != "" {
		if t, err := time.Parse(time.RFC3339, from); err == nil {
			if filter["created_at"] == nil {
				filter["created_at"] = bson.M{}
			}
			filter["created_at"].(bson.M)["$gte"] = t
		}
	}

	if to != "" {
		if t, err := time.Parse(time.RFC3339, to); err == nil {
			if filter["created_at"] == nil {
				filter["created_at"] = bson.M{}
			}
			filter["created_at"].(bson.M)["$lte"] = t
		}
	}

	alerts, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}

	summaries := make([]model.AlertSummary, len(alerts))
	for i, alert := range alerts {
		summaries[i] = alert.ToSummary()
	}

	return summaries, total, nil
}

// Acknowledge marks an OPEN alert as acknowledged on behalf of the external
// closure workflow
func (s *AlertService) Acknowledge(ctx context.Context, alertID, acknowledgedBy string) error {
	objID, err := primitive.ObjectIDFromHex(alertID)
	if err != nil {
		return fmt.Errorf("invalid alert ID: %w", err)
	}

	if acknowledgedBy == "" {
		return fmt.Errorf("acknowledged_by is required")
	}

	return s.repo.Acknowledge(ctx, objID, acknowledgedBy, time.Now().UTC())
}
