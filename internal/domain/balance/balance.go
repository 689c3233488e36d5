// Package balance holds daily marketplace account balance snapshots.
package balance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mateus-bonette00/qota-store/internal/domain/money"
)

// Snapshot is the marketplace account balance observed on one calendar day.
// The sync engine inserts at most one snapshot per day and never overwrites
// an existing one.
type Snapshot struct {
	ID        int64           `json:"id"`
	Date      time.Time       `json:"date"` // day granularity
	Available decimal.Decimal `json:"available"`
	Pending   decimal.Decimal `json:"pending"`
	Currency  money.Currency  `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
}

// Repository defines balance snapshot persistence operations
type Repository interface {
	// ExistsForDay reports whether a snapshot was already taken on the
	// given calendar day
	ExistsForDay(ctx context.Context, day time.Time) (bool, error)

	Create(ctx context.Context, s *Snapshot) error

	// Latest returns the most recent snapshot, or (nil, nil) when none exist
	Latest(ctx context.Context) (*Snapshot, error)

	WithTx(tx pgx.Tx) Repository
}
