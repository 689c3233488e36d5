// Package syncrun holds the append-only audit trail of marketplace sync
// attempts and the store-held lease that keeps sync runs mutually exclusive
// across service instances.
package syncrun

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind identifies which sync phase a run row records.
type Kind string

const (
	KindInventory Kind = "inventory"
	KindOrders    Kind = "orders"
	KindBalance   Kind = "balance"
)

// Status is the outcome of one phase attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusPartial Status = "partial"
)

// Run is one row of the audit trail: one sync attempt of one kind.
// Rows are appended, never updated or deleted.
type Run struct {
	ID             uuid.UUID `json:"id" bson:"id"`
	Timestamp      time.Time `json:"timestamp" bson:"timestamp"`
	Kind           Kind      `json:"kind" bson:"kind"`
	RecordsCreated int       `json:"records_created" bson:"records_created"`
	RecordsUpdated int       `json:"records_updated" bson:"records_updated"`
	Status         Status    `json:"status" bson:"status"`
	ErrorDetail    string    `json:"error_detail,omitempty" bson:"error_detail,omitempty"`
}

// NewRun builds an audit row stamped with the current time.
func NewRun(kind Kind, created, updated int, status Status, errDetail string) *Run {
	return &Run{
		ID:             uuid.New(),
		Timestamp:      time.Now().UTC(),
		Kind:           kind,
		RecordsCreated: created,
		RecordsUpdated: updated,
		Status:         status,
		ErrorDetail:    errDetail,
	}
}

// Repository defines the append-only audit trail store
type Repository interface {
	Append(ctx context.Context, run *Run) error

	// ListRecent returns the newest runs first, up to limit
	ListRecent(ctx context.Context, limit int) ([]*Run, error)
}

// Lease is a store-held exclusivity guard: at most one holder at a time,
// expiring after a TTL so a crashed holder cannot wedge syncing forever.
// An in-process flag alone cannot protect multiple service replicas.
type Lease interface {
	// Acquire takes the lease if it is free or expired.
	// Returns false when another live holder has it.
	Acquire(ctx context.Context, holder string, ttl time.Duration) (bool, error)

	// Renew extends a held lease; a no-op if the holder lost it
	Renew(ctx context.Context, holder string, ttl time.Duration) error

	// Release frees the lease if still held by holder
	Release(ctx context.Context, holder string) error
}
