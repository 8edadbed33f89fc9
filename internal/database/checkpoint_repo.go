package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ferrgo/kestrel/internal/model"
)

// CheckpointRepository handles checkpoint operations
type CheckpointRepository struct {
	collection *mongo.Collection
}

// NewCheckpointRepository creates a new checkpoint repository
func NewCheckpointRepository(db *MongoDB) *CheckpointRepository {
	return &CheckpointRepository{
		collection: db.GetCollection(CollectionCheckpoints),
	}
}

// Create inserts a new checkpoint
func (r *CheckpointRepository) Create(ctx context.Context, checkpoint *model.Checkpoint) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Ensure ID is generated if not set
	if checkpoint.ID.IsZero() {
		checkpoint.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctxTimeout, checkpoint)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("checkpoint '%s' already exists in building '%s'", checkpoint.Name, checkpoint.BuildingID)
		}
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}

	return nil
}

// GetByID retrieves a checkpoint by ID
func (r *CheckpointRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Checkpoint, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var checkpoint model.Checkpoint
	err := r.collection.FindOne(ctxTimeout, bson.M{"_id": id}).Decode(&checkpoint)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("checkpoint not found")
		}
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	return &checkpoint, nil
}

// List retrieves checkpoints with filtering and pagination
func (r *CheckpointRepository) List(ctx context.Context, filter bson.M, page, limit int) ([]model.Checkpoint, int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Count total documents
	total, err := r.collection.CountDocuments(ctxTimeout, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count checkpoints: %w", err)
	}

	// Calculate pagination
	skip := (page - 1) * limit
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "building_id", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctxTimeout, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list checkpoints: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var checkpoints []model.Checkpoint
	if err := cursor.All(ctxTimeout, &checkpoints); err != nil {
		return nil, 0, fmt.Errorf("failed to decode checkpoints: %w", err)
	}

	return checkpoints, total, nil
}

// FindOverdue returns all active checkpoints whose last_cleaned_timestamp
// precedes the cutoff. This is a single indexed range scan over
// (is_active, last_cleaned_timestamp); the driver cursor streams results in
// server-side batches, so cost is independent of the building count. A
// never-serviced checkpoint stores the zero date and is therefore included.
func (r *CheckpointRepository) FindOverdue(ctx context.Context, cutoff time.Time) ([]model.Checkpoint, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	filter := bson.M{
		"is_active":              true,
		"last_cleaned_timestamp": bson.M{"$lt": cutoff},
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "last_cleaned_timestamp", Value: 1}}).
		SetBatchSize(500)

	cursor, err := r.collection.Find(ctxTimeout, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue checkpoints: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var checkpoints []model.Checkpoint
	if err := cursor.All(ctxTimeout, &checkpoints); err != nil {
		return nil, fmt.Errorf("failed to decode overdue checkpoints: %w", err)
	}

	return checkpoints, nil
}

// MarkOverdue sets current_status to OVERDUE for the given checkpoints in one
// update. Idempotent: re-marking an already OVERDUE checkpoint is a no-op in
// effect, which is what lets the next sweep heal a partially failed run.
func (r *CheckpointRepository) MarkOverdue(ctx context.Context, ids []primitive.ObjectID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"_id": bson.M{"$in": ids}}
	update := bson.M{
		"$set": bson.M{
			"current_status": model.CheckpointStatusOverdue,
			"updated_at":     time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateMany(ctxTimeout, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to mark checkpoints overdue: %w", err)
	}

	return result.ModifiedCount, nil
}

// RecordService advances the denormalized last-cleaned marker and resets status
// to CLEAN. The filter only matches when serviced_at is newer than the stored
// timestamp (or no service is on record), so the marker is monotonically
// non-decreasing even when events arrive out of order. Returns false when the
// event was stale and the checkpoint was left untouched.
func (r *CheckpointRepository) RecordService(ctx context.Context, id primitive.ObjectID, servicedAt time.Time) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id": id,
		"$or": []bson.M{
			{"last_cleaned_timestamp": bson.M{"$lt": servicedAt}},
			{"last_cleaned_timestamp": bson.M{"$exists": false}},
		},
	}

	update := bson.M{
		"$set": bson.M{
			"last_cleaned_timestamp": servicedAt,
			"last_cleaned_at":        servicedAt.UTC().Format(time.RFC3339),
			"current_status":         model.CheckpointStatusClean,
			"updated_at":             time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctxTimeout, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to record service: %w", err)
	}

	return result.MatchedCount > 0, nil
}
