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

// AlertRepository handles alert operations
type AlertRepository struct {
	collection *mongo.Collection
}

// NewAlertRepository creates a new alert repository
func NewAlertRepository(db *MongoDB) *AlertRepository {
	return &AlertRepository{
		collection: db.GetCollection(CollectionAlerts),
	}
}

// FindOpenCheckpointIDs returns the checkpoint ids among the given ones that
// currently hold an OPEN alert of the given type. The caller is responsible
// for keeping len(ids) within the platform membership-test ceiling; this
// method issues exactly one query.
func (r *AlertRepository) FindOpenCheckpointIDs(ctx context.Context, ids []primitive.ObjectID, alertType string) (map[primitive.ObjectID]struct{}, error) {
	open := make(map[primitive.ObjectID]struct{})
	if len(ids) == 0 {
		return open, nil
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"checkpoint_id": bson.M{"$in": ids},
		"type":          alertType,
		"status":        model.AlertStatusOpen,
	}

	opts := options.Find().SetProjection(bson.M{"checkpoint_id": 1})

	cursor, err := r.collection.Find(ctxTimeout, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query open alerts: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var hits []struct {
		CheckpointID primitive.ObjectID `bson:"checkpoint_id"`
	}
	if err := cursor.All(ctxTimeout, &hits); err != nil {
		return nil, fmt.Errorf("failed to decode open alerts: %w", err)
	}

	for _, hit := range hits {
		open[hit.CheckpointID] = struct{}{}
	}

	return open, nil
}

// duplicateKeyCode is the server error code for a write rejected by a
// unique index
const duplicateKeyCode = 11000

// InsertAlerts commits one batch of new alerts with a single unordered
// InsertMany. Duplicate key errors mean a racing sweep already created the
// OPEN alert for that checkpoint (the partial unique index holds the
// invariant); those are counted and tolerated, every other error is fatal.
func (r *AlertRepository) InsertAlerts(ctx context.Context, alerts []model.Alert) (int, int, error) {
	if len(alerts) == 0 {
		return 0, 0, nil
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	docs := make([]interface{}, len(alerts))
	for i := range alerts {
		if alerts[i].ID.IsZero() {
			alerts[i].ID = primitive.NewObjectID()
		}
		docs[i] = alerts[i]
	}

	opts := options.InsertMany().SetOrdered(false)
	result, err := r.collection.InsertMany(ctxTimeout, docs, opts)

	inserted := 0
	if result != nil {
		inserted = len(result.InsertedIDs)
	}

	raced, err := classifyInsertErr(err)
	return inserted, raced, err
}

// classifyInsertErr separates tolerable duplicate-key rejections from fatal
// failures in an unordered InsertMany outcome. mongo.IsDuplicateKeyError is
// too coarse here: it reports true when ANY write error in the bulk exception
// is a duplicate key, which would let a batch mixing a benign race with a
// genuine write failure pass as success and leave checkpoints marked OVERDUE
// with no alert on record. Only unique-index rejections count as raced;
// any other write error, or a write-concern failure, fails the whole batch.
func classifyInsertErr(err error) (int, error) {
	if err == nil {
		return 0, nil
	}

	var bulkErr mongo.BulkWriteException
	if !errors.As(err, &bulkErr) {
		return 0, fmt.Errorf("failed to insert alerts: %w", err)
	}

	raced := 0
	for _, writeErr := range bulkErr.WriteErrors {
		if writeErr.Code != duplicateKeyCode {
			return raced, fmt.Errorf("failed to insert alerts: %w", err)
		}
		raced++
	}

	if bulkErr.WriteConcernError != nil {
		return raced, fmt.Errorf("alert batch write concern failed: %w", err)
	}

	return raced, nil
}

// GetByID retrieves an alert by ID
func (r *AlertRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Alert, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var alert model.Alert
	err := r.collection.FindOne(ctxTimeout, bson.M{"_id": id}).Decode(&alert)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("alert not found")
		}
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	return &alert, nil
}

// List retrieves alerts with filtering and pagination
func (r *AlertRepository) List(ctx context.Context, filter bson.M, page, limit int) ([]model.Alert, int64, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	// Count total documents
	total, err := r.collection.CountDocuments(ctxTimeout, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	// Calculate pagination
	skip := (page - 1) * limit
	opts := options.Find().
		SetSkip(int64(skip)).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctxTimeout, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer cursor.Close(ctxTimeout)

	var alerts []model.Alert
	if err := cursor.All(ctxTimeout, &alerts); err != nil {
		return nil, 0, fmt.Errorf("failed to decode alerts: %w", err)
	}

	return alerts, total, nil
}

// Acknowledge marks an OPEN alert as acknowledged. This is the external
// closure workflow's surface; the watchdog itself never mutates alerts.
func (r *AlertRepository) Acknowledge(ctx context.Context, id primitive.ObjectID, acknowledgedBy string, acknowledgedAt time.Time) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"_id":    id,
		"status": model.AlertStatusOpen,
	}

	update := bson.M{
		"$set": bson.M{
			"status":          model.AlertStatusAcknowledged,
			"acknowledged_by": acknowledgedBy,
			"acknowledged_at": acknowledgedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctxTimeout, filter, update)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("alert not found or not open")
	}

	return nil
}
