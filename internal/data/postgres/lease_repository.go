package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mateus-bonette00/qota-store/internal/domain/syncrun"
	"github.com/mateus-bonette00/qota-store/internal/platform/persistence"
)

// leaseName is the single row the sync lease lives in.
const leaseName = "marketplace_sync"

// LeaseRepository implements the syncrun.Lease interface on a single-row
// PostgreSQL table. The upsert's WHERE clause is the arbitration point, so
// two replicas racing for the lease resolve inside one statement.
type LeaseRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLeaseRepository creates the PostgreSQL sync lease.
func NewLeaseRepository(logger *slog.Logger, db *persistence.PostgresDB) syncrun.Lease {
	return &LeaseRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Acquire takes the lease if it is free, expired, or already ours.
func (r *LeaseRepository) Acquire(ctx context.Context, holder string, ttl time.Duration) (bool, error) {
	query := `
		INSERT INTO sync_lease (name, holder, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE
		SET holder = EXCLUDED.holder, expires_at = EXCLUDED.expires_at
		WHERE sync_lease.expires_at < now() OR sync_lease.holder = EXCLUDED.holder
	`

	tag, err := r.querier.Exec(ctx, query, leaseName, holder, time.Now().Add(ttl))
	if err != nil {
		r.logger.Error("Failed to acquire sync lease", "holder", holder, "error", err)
		return false, fmt.Errorf("failed to acquire sync lease: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Renew extends the lease while we still hold it. Losing the lease mid-run
// is not an error here; the next Acquire will report it.
func (r *LeaseRepository) Renew(ctx context.Context, holder string, ttl time.Duration) error {
	query := `UPDATE sync_lease SET expires_at = $1 WHERE name = $2 AND holder = $3`

	_, err := r.querier.Exec(ctx, query, time.Now().Add(ttl), leaseName, holder)
	if err != nil {
		r.logger.Error("Failed to renew sync lease", "holder", holder, "error", err)
		return fmt.Errorf("failed to renew sync lease: %w", err)
	}
	return nil
}

// Release frees the lease if still held by holder.
func (r *LeaseRepository) Release(ctx context.Context, holder string) error {
	query := `DELETE FROM sync_lease WHERE name = $1 AND holder = $2`

	_, err := r.querier.Exec(ctx, query, leaseName, holder)
	if err != nil {
		r.logger.Error("Failed to release sync lease", "holder", holder, "error", err)
		return fmt.Errorf("failed to release sync lease: %w", err)
	}
	return nil
}
