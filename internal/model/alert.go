package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Alert types
const (
	AlertTypeMissingClean = "SLA_MISSING_CLEAN"
)

// Alert status values. OPEN alerts are created by the watchdog; closure is an
// external workflow and never happens inside this service's sweep path.
const (
	AlertStatusOpen         = "OPEN"
	AlertStatusAcknowledged = "ACKNOWLEDGED"
	AlertStatusClosed       = "CLOSED"
)

// Alert severity values
const (
	AlertSeverityLow      = "LOW"
	AlertSeverityMedium   = "MEDIUM"
	AlertSeverityHigh     = "HIGH"
	AlertSeverityCritical = "CRITICAL"
)

// AlertDetails holds the structured breach measurements captured at creation time
type AlertDetails struct {
	HoursOverdue      float64 `json:"hours_overdue" bson:"hours_overdue"`
	SLAThresholdHours int     `json:"sla_threshold_hours" bson:"sla_threshold_hours"`
}

// Alert represents one detected SLA breach. BuildingID is denormalized from the
// checkpoint for query convenience. At most one OPEN alert of a given type may
// exist per checkpoint; the partial unique index on (checkpoint_id, type) where
// status is OPEN enforces this even across overlapping sweeps.
type Alert struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BuildingID     string             `json:"building_id" bson:"building_id"`
	CheckpointID   primitive.ObjectID `json:"checkpoint_id" bson:"checkpoint_id"`
	Type           string             `json:"type" bson:"type"`
	Severity       string             `json:"severity" bson:"severity"`
	Status         string             `json:"status" bson:"status"`
	Message        string             `json:"message" bson:"message"`
	Details        AlertDetails       `json:"details" bson:"details"`
	LastCleanedAt  string             `json:"last_cleaned_at,omitempty" bson:"last_cleaned_at,omitempty"`
	CreatedAt      time.Time          `json:"created_at" bson:"created_at"`
	AcknowledgedBy string             `json:"acknowledged_by,omitempty" bson:"acknowledged_by,omitempty"`
	AcknowledgedAt time.Time          `json:"acknowledged_at,omitempty" bson:"acknowledged_at,omitempty"`
}

// AlertSummary represents a summary for list responses
type AlertSummary struct {
	ID             string       `json:"id"`
	BuildingID     string       `json:"building_id"`
	CheckpointID   string       `json:"checkpoint_id"`
	Type           string       `json:"type"`
	Severity       string       `json:"severity"`
	Status         string       `json:"status"`
	Message        string       `json:"message"`
	Details        AlertDetails `json:"details"`
	LastCleanedAt  string       `json:"last_cleaned_at,omitempty"`
	CreatedAt      string       `json:"created_at"`
	AcknowledgedBy string       `json:"acknowledged_by,omitempty"`
	AcknowledgedAt string       `json:"acknowledged_at,omitempty"`
}

// ToSummary converts Alert to AlertSummary
func (a *Alert) ToSummary() AlertSummary {
	var createdAt, acknowledgedAt string
	if !a.CreatedAt.IsZero() {
		createdAt = a.CreatedAt.Format(time.RFC3339)
	}
	if !a.AcknowledgedAt.IsZero() {
		acknowledgedAt = a.AcknowledgedAt.Format(time.RFC3339)
	}

	return AlertSummary{
		ID:             a.ID.Hex(),
		BuildingID:     a.BuildingID,
		CheckpointID:   a.CheckpointID.Hex(),
		Type:           a.Type,
		Severity:       a.Severity,
		Status:         a.Status,
		Message:        a.Message,
		Details:        a.Details,
		LastCleanedAt:  a.LastCleanedAt,
		CreatedAt:      createdAt,
		AcknowledgedBy: a.AcknowledgedBy,
		AcknowledgedAt: acknowledgedAt,
	}
}
