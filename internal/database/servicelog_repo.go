package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ferrgo/kestrel/internal/model"
)

// ServiceLogRepository handles service log operations
type ServiceLogRepository struct {
	collection *mongo.Collection
}

// NewServiceLogRepository creates a new service log repository
func NewServiceLogRepository(db *MongoDB) *ServiceLogRepository {
	return &ServiceLogRepository{
		collection: db.GetCollection(CollectionServiceLogs),
	}
}

// Create appends a new service log. The collection is append-only.
func (r *ServiceLogRepository) Create(ctx context.Context, log *model.ServiceLog) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if log.ID.IsZero() {
		log.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctxTimeout, log)
	if err != nil {
		return fmt.Errorf("failed to create service log: %w", err)
	}

	return nil
}

// ListByCheckpoint retrieves service logs for a checkpoint, newest first
func (r *ServiceLogRepository) ListByCheckpoint(ctx context.Context, checkpointID primitive.ObjectID, page, limit int) ([]model.ServiceLog, int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"checkpoint_id": checkpointID}

	total, err := r.collection.CountDocuments(ctxTimeout, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count service logs: %w", err)
	}

	skip := (page - 1) * limit
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "serviced_at", Value: -1}})

	cursor, err := r.collection.Find(ctxTimeout, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list service logs: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var logs []model.ServiceLog
	if err := cursor.All(ctxTimeout, &logs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode service logs: %w", err)
	}

	return logs, total, nil
}
