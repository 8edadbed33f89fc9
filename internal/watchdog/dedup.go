package watchdog

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ferrgo/kestrel/internal/model"
)

// OpenAlertFinder answers which of the given checkpoints currently hold an
// OPEN alert of the given type. Implementations issue one membership query
// per call; the ids slice never exceeds the platform $in ceiling.
type OpenAlertFinder interface {
	FindOpenCheckpointIDs(ctx context.Context, ids []primitive.ObjectID, alertType string) (map[primitive.ObjectID]struct{}, error)
}

// Deduplicator filters overdue checkpoints down to the ones with no OPEN
// breach alert, chunking the membership test at the store's $in limit.
type Deduplicator struct {
	alerts    OpenAlertFinder
	chunkSize int
}

// NewDeduplicator creates a deduplicator with the given per-query id ceiling
func NewDeduplicator(alerts OpenAlertFinder, chunkSize int) *Deduplicator {
	if chunkSize <= 0 {
		chunkSize = 10
	}
	return &Deduplicator{
		alerts:    alerts,
		chunkSize: chunkSize,
	}
}

// Filter returns the subset of checkpoints without an OPEN alert of type
// SLA_MISSING_CLEAN, preserving input order. Any chunk failure aborts the
// whole operation: deduplicating against partial data would risk duplicate
// alerts, so the caller must fail the sweep instead.
func (d *Deduplicator) Filter(ctx context.Context, checkpoints []model.Checkpoint) ([]model.Checkpoint, error) {
	if len(checkpoints) == 0 {
		return nil, nil
	}

	ids := make([]primitive.ObjectID, len(checkpoints))
	for i, cp := range checkpoints {
		ids[i] = cp.ID
	}

	alreadyOpen := make(map[primitive.ObjectID]struct{})
	for _, chunk := range chunkIDs(ids, d.chunkSize) {
		open, err := d.alerts.FindOpenCheckpointIDs(ctx, chunk, model.AlertTypeMissingClean)
		if err != nil {
			return nil, fmt.Errorf("dedup chunk query failed: %w", err)
		}
		for id := range open {
			alreadyOpen[id] = struct{}{}
		}
	}

	needing := make([]model.Checkpoint, 0, len(checkpoints))
	for _, cp := range checkpoints {
		if _, dup := alreadyOpen[cp.ID]; !dup {
			needing = append(needing, cp)
		}
	}

	return needing, nil
}

// chunkIDs partitions ids into slices of at most size elements
func chunkIDs(ids []primitive.ObjectID, size int) [][]primitive.ObjectID {
	if len(ids) == 0 {
		return nil
	}

	chunks := make([][]primitive.ObjectID, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}

	return chunks
}
