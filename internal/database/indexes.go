package database

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ferrgo/kestrel/internal/model"
)

// CreateIndexes creates all necessary indexes for the collections
func CreateIndexes(ctx context.Context, db *MongoDB) error {
	slog.Info("Creating MongoDB indexes")

	if err := createCheckpointIndexes(ctx, db); err != nil {
		return err
	}

	if err := createAlertIndexes(ctx, db); err != nil {
		return err
	}

	if err := createSLAPolicyIndexes(ctx, db); err != nil {
		return err
	}

	if err := createServiceLogIndexes(ctx, db); err != nil {
		return err
	}

	if err := createWatchdogLockIndexes(ctx, db); err != nil {
		return err
	}

	slog.Info("Successfully created all MongoDB indexes")
	return nil
}

func createCheckpointIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionCheckpoints)

	indexes := []mongo.IndexModel{
		// Serves the overdue range scan: one query per sweep regardless of
		// building or checkpoint count.
		{
			Keys: bson.D{
				{Key: "is_active", Value: 1},
				{Key: "last_cleaned_timestamp", Value: 1},
			},
			Options: options.Index().SetName("idx_active_last_cleaned"),
		},
		{
			Keys:    bson.D{{Key: "building_id", Value: 1}},
			Options: options.Index().SetName("idx_building_id"),
		},
		{
			Keys: bson.D{
				{Key: "building_id", Value: 1},
				{Key: "name", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("idx_building_name_unique"),
		},
		{
			Keys:    bson.D{{Key: "current_status", Value: 1}},
			Options: options.Index().SetName("idx_current_status"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created checkpoints indexes")
	return nil
}

func createAlertIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionAlerts)

	indexes := []mongo.IndexModel{
		// Makes alert creation idempotent under overlapping sweeps: a racing
		// insert for a checkpoint that already holds an OPEN alert of the same
		// type fails with a duplicate key error instead of creating a second one.
		{
			Keys: bson.D{
				{Key: "checkpoint_id", Value: 1},
				{Key: "type", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": model.AlertStatusOpen}).
				SetName("idx_open_alert_unique"),
		},
		{
			Keys: bson.D{
				{Key: "building_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_building_created_at"),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().SetName("idx_status_created_at"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created alerts indexes")
	return nil
}

func createSLAPolicyIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionSLAPolicies)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "building_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_building_id_unique"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created sla_policies indexes")
	return nil
}

func createServiceLogIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionServiceLogs)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "checkpoint_id", Value: 1},
				{Key: "serviced_at", Value: -1},
			},
			Options: options.Index().SetName("idx_checkpoint_serviced_at"),
		},
		{
			Keys: bson.D{
				{Key: "building_id", Value: 1},
				{Key: "serviced_at", Value: -1},
			},
			Options: options.Index().SetName("idx_building_serviced_at"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created service_logs indexes")
	return nil
}

func createWatchdogLockIndexes(ctx context.Context, db *MongoDB) error {
	collection := db.GetCollection(CollectionWatchdogLocks)

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "job", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_job_unique"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_expires_at_ttl"),
		},
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := collection.Indexes().CreateMany(ctxTimeout, indexes)
	if err != nil {
		return err
	}

	slog.Info("Created watchdog_locks indexes")
	return nil
}
