package model

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SLAPolicy is the per-building override for the maximum allowed gap between
// verified services. Buildings without an override fall back to the configured
// global default. Read-only from the watchdog's perspective.
type SLAPolicy struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BuildingID  string             `json:"building_id" bson:"building_id"`
	MaxGapHours int                `json:"max_gap_hours" bson:"max_gap_hours"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// Validate validates the policy
func (p *SLAPolicy) Validate() error {
	if p.BuildingID == "" {
		return errors.New("building_id is required")
	}
	if p.MaxGapHours <= 0 {
		return errors.New("max_gap_hours must be positive")
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// MaxGap returns the allowed service gap as a duration
func (p *SLAPolicy) MaxGap() time.Duration {
	return time.Duration(p.MaxGapHours) * time.Hour
}
