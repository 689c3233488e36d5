// Package mongo stores the marketplace sync audit trail. Run documents are
// append-only; the collection is never updated in place.
package mongo

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mateus-bonette00/qota-store/internal/domain/syncrun"
)

const (
	// SyncRunCollectionName is the name of the sync-run collection in MongoDB
	SyncRunCollectionName = "sync_runs"
)

// SyncRunRepository implements the syncrun.Repository interface for MongoDB
type SyncRunRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewSyncRunRepository creates a new MongoDB sync-run repository
func NewSyncRunRepository(logger *slog.Logger, db *mongo.Database) syncrun.Repository {
	return &SyncRunRepository{
		db:     db,
		logger: logger,
	}
}

// Append stores one audit row.
func (r *SyncRunRepository) Append(ctx context.Context, run *syncrun.Run) error {
	collection := r.db.Collection(SyncRunCollectionName)

	_, err := collection.InsertOne(ctx, run)
	if err != nil {
		r.logger.Error("Failed to append sync run",
			"run_id", run.ID.String(),
			"kind", string(run.Kind),
			"error", err)
		return fmt.Errorf("failed to append sync run: %w", err)
	}

	return nil
}

// ListRecent retrieves the newest runs first, up to limit.
func (r *SyncRunRepository) ListRecent(ctx context.Context, limit int) ([]*syncrun.Run, error) {
	collection := r.db.Collection(SyncRunCollectionName)

	opts := options.Find().
		SetSort(bson.M{"timestamp": -1}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		r.logger.Error("Failed to list sync runs", "error", err)
		return nil, fmt.Errorf("failed to list sync runs: %w", err)
	}
	defer cursor.Close(ctx)

	var runs []*syncrun.Run
	if err := cursor.All(ctx, &runs); err != nil {
		r.logger.Error("Failed to decode sync runs", "error", err)
		return nil, fmt.Errorf("failed to decode sync runs: %w", err)
	}

	return runs, nil
}
