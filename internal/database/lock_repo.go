package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ferrgo/kestrel/internal/model"
)

// LockRepository handles distributed lock operations for background jobs
type LockRepository struct {
	collection *mongo.Collection
}

// NewLockRepository creates a new lock repository
func NewLockRepository(db *MongoDB) *LockRepository {
	return &LockRepository{
		collection: db.GetCollection(CollectionWatchdogLocks),
	}
}

// Acquire attempts to take the named job lock for this pod.
// Returns true if the lock was successfully acquired, false if it's already
// held by another pod. Uses FindOneAndUpdate with upsert for atomicity.
func (r *LockRepository) Acquire(ctx context.Context, job, podID string, ttl time.Duration) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	expiresAt := now.Add(ttl)

	// Either no lock exists for this job, or the existing lock has expired
	filter := bson.M{
		"job": job,
		"$or": []bson.M{
			{"expires_at": bson.M{"$lt": now}},
			{"expires_at": bson.M{"$exists": false}},
		},
	}

	update := bson.M{
		"$set": bson.M{
			"job":        job,
			"locked_by":  podID,
			"locked_at":  now,
			"expires_at": expiresAt,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result model.WatchdogLock
	err := r.collection.FindOneAndUpdate(ctxTimeout, filter, update, opts).Decode(&result)

	if err != nil {
		if err == mongo.ErrNoDocuments || mongo.IsDuplicateKeyError(err) {
			// Lock is held by another pod and hasn't expired
			return false, nil
		}
		return false, fmt.Errorf("failed to acquire lock: %w", err)
	}

	if result.LockedBy != podID {
		return false, nil
	}

	slog.Debug("Successfully acquired lock",
		"job", job,
		"pod_id", podID,
		"expires_at", expiresAt,
	)

	return true, nil
}

// Release releases the named job lock, but only if it's owned by the
// specified pod. This prevents a pod from releasing another pod's lock.
func (r *LockRepository) Release(ctx context.Context, job, podID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"job":       job,
		"locked_by": podID,
	}

	result, err := r.collection.DeleteOne(ctxTimeout, filter)
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}

	if result.DeletedCount > 0 {
		slog.Debug("Successfully released lock",
			"job", job,
			"pod_id", podID,
		)
	}

	return nil
}
