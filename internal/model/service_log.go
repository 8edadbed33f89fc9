package model

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServiceLog is an append-only record of one verified service event. CleanerName,
// CleanerEmail and Notes are personally identifying and must never leave the
// primary store unredacted; the privacy filter projects a ServiceLog down to a
// MirrorRecord before anything is handed to the analytics sink.
type ServiceLog struct {
	ID           primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	CheckpointID primitive.ObjectID     `json:"checkpoint_id" bson:"checkpoint_id"`
	BuildingID   string                 `json:"building_id" bson:"building_id"`
	CleanerName  string                 `json:"cleaner_name,omitempty" bson:"cleaner_name,omitempty"`
	CleanerEmail string                 `json:"cleaner_email,omitempty" bson:"cleaner_email,omitempty"`
	Notes        string                 `json:"notes,omitempty" bson:"notes,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	ServicedAt   time.Time              `json:"serviced_at" bson:"serviced_at"`
	Verified     bool                   `json:"verified" bson:"verified"`
	CreatedAt    time.Time              `json:"created_at" bson:"created_at"`
}

// Validate validates the service log and fills defaults
func (s *ServiceLog) Validate() error {
	if s.CheckpointID.IsZero() {
		return errors.New("checkpoint_id is required")
	}
	if s.BuildingID == "" {
		return errors.New("building_id is required")
	}
	if s.ServicedAt.IsZero() {
		return errors.New("serviced_at is required")
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return nil
}

// MirrorRecord is the sanitized projection of a ServiceLog that the analytics
// mirror ships to the warehouse. It carries no personally identifying fields;
// Attributes holds only allow-listed extractions from the device metadata.
type MirrorRecord struct {
	CheckpointID string                 `json:"checkpoint_id"`
	BuildingID   string                 `json:"building_id"`
	ServicedAt   time.Time              `json:"serviced_at"`
	Verified     bool                   `json:"verified"`
	Attributes   map[string]interface{} `json:"attributes,omitempty"`
}
