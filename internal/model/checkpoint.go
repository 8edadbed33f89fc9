package model

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Checkpoint status values
const (
	CheckpointStatusUnknown = "UNKNOWN"
	CheckpointStatusClean   = "CLEAN"
	CheckpointStatusOverdue = "OVERDUE"
)

// Checkpoint represents a monitored physical location inside a managed building.
// LastCleanedTimestamp is denormalized from the service log so that staleness can
// be answered by a single range scan instead of a per-checkpoint history join.
// It is always stored (no omitempty): a never-serviced checkpoint carries the
// zero date, which sorts before any cutoff and so is picked up by the scan.
type Checkpoint struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BuildingID           string             `json:"building_id" bson:"building_id"`
	Name                 string             `json:"name" bson:"name"`
	Floor                string             `json:"floor,omitempty" bson:"floor,omitempty"`
	IsActive             bool               `json:"is_active" bson:"is_active"`
	LastCleanedTimestamp time.Time          `json:"last_cleaned_timestamp" bson:"last_cleaned_timestamp"`
	LastCleanedAt        string             `json:"last_cleaned_at,omitempty" bson:"last_cleaned_at,omitempty"`
	CurrentStatus        string             `json:"current_status" bson:"current_status"`
	CreatedAt            time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" bson:"updated_at"`
}

// Validate validates a checkpoint and fills defaults
func (c *Checkpoint) Validate() error {
	if c.Name == "" {
		return errors.New("checkpoint name is required")
	}
	if len(c.Name) > 255 {
		return errors.New("checkpoint name must be 255 characters or less")
	}
	if c.BuildingID == "" {
		return errors.New("building_id is required")
	}

	if c.CurrentStatus == "" {
		c.CurrentStatus = CheckpointStatusUnknown
	}
	switch c.CurrentStatus {
	case CheckpointStatusUnknown, CheckpointStatusClean, CheckpointStatusOverdue:
	default:
		return errors.New("invalid current_status")
	}

	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = now
	}

	return nil
}

// NeverCleaned reports whether the checkpoint has no verified service on record
func (c *Checkpoint) NeverCleaned() bool {
	return c.LastCleanedTimestamp.IsZero()
}

// CheckpointListItem represents a summary of a checkpoint for list responses
type CheckpointListItem struct {
	ID            string `json:"id"`
	BuildingID    string `json:"building_id"`
	Name          string `json:"name"`
	Floor         string `json:"floor,omitempty"`
	IsActive      bool   `json:"is_active"`
	LastCleanedAt string `json:"last_cleaned_at,omitempty"`
	CurrentStatus string `json:"current_status"`
}

// ToListItem converts Checkpoint to CheckpointListItem
func (c *Checkpoint) ToListItem() CheckpointListItem {
	lastCleaned := c.LastCleanedAt
	if lastCleaned == "" && !c.LastCleanedTimestamp.IsZero() {
		lastCleaned = c.LastCleanedTimestamp.Format(time.RFC3339)
	}

	return CheckpointListItem{
		ID:            c.ID.Hex(),
		BuildingID:    c.BuildingID,
		Name:          c.Name,
		Floor:         c.Floor,
		IsActive:      c.IsActive,
		LastCleanedAt: lastCleaned,
		CurrentStatus: c.CurrentStatus,
	}
}
