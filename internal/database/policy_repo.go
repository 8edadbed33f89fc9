package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ferrgo/kestrel/internal/model"
)

// PolicyRepository handles SLA policy operations
type PolicyRepository struct {
	collection *mongo.Collection
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(db *MongoDB) *PolicyRepository {
	return &PolicyRepository{
		collection: db.GetCollection(CollectionSLAPolicies),
	}
}

// ListAll retrieves every per-building policy override. The collection is
// small (one document per building with a custom SLA), so the watchdog loads
// it whole once per run.
func (r *PolicyRepository) ListAll(ctx context.Context) ([]model.SLAPolicy, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctxTimeout, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list SLA policies: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var policies []model.SLAPolicy
	if err := cursor.All(ctxTimeout, &policies); err != nil {
		return nil, fmt.Errorf("failed to decode SLA policies: %w", err)
	}

	return policies, nil
}

// GetByBuilding retrieves the policy override for a building
func (r *PolicyRepository) GetByBuilding(ctx context.Context, buildingID string) (*model.SLAPolicy, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var policy model.SLAPolicy
	err := r.collection.FindOne(ctxTimeout, bson.M{"building_id": buildingID}).Decode(&policy)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("SLA policy not found")
		}
		return nil, fmt.Errorf("failed to get SLA policy: %w", err)
	}

	return &policy, nil
}

// Upsert creates or replaces the policy override for a building
func (r *PolicyRepository) Upsert(ctx context.Context, policy *model.SLAPolicy) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	policy.UpdatedAt = time.Now().UTC()

	filter := bson.M{"building_id": policy.BuildingID}
	update := bson.M{
		"$set": bson.M{
			"building_id":   policy.BuildingID,
			"max_gap_hours": policy.MaxGapHours,
			"updated_at":    policy.UpdatedAt,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctxTimeout, filter, update, opts); err != nil {
		return fmt.Errorf("failed to upsert SLA policy: %w", err)
	}

	return nil
}
