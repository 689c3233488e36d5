package fxrate

import (
	"context"
	"errors"
)

// ErrNoSnapshots indicates the rate history is empty
var ErrNoSnapshots = errors.New("no exchange rate snapshots persisted")

// Repository defines the append-only exchange-rate history
type Repository interface {
	// Append persists a new snapshot; existing rows are never touched
	Append(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recently fetched snapshot
	// Returns ErrNoSnapshots when the history is empty
	Latest(ctx context.Context) (*Snapshot, error)
}
