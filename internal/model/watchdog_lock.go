package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WatchdogLock is a distributed lock guaranteeing single-flight execution of a
// named background job across pods. The TTL index on expires_at reaps locks
// left behind by crashed pods.
type WatchdogLock struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Job       string             `json:"job" bson:"job"`
	LockedBy  string             `json:"locked_by" bson:"locked_by"`   // Pod identifier (hostname)
	LockedAt  time.Time          `json:"locked_at" bson:"locked_at"`   // Lock acquisition timestamp
	ExpiresAt time.Time          `json:"expires_at" bson:"expires_at"` // Lock expiration (TTL)
}
