// Package fxrate holds the exchange-rate snapshot entity and its append-only
// history repository.
package fxrate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mateus-bonette00/qota-store/internal/domain/money"
)

// Provenance marks where a rate table came from so callers can tell a live
// fetch apart from the fallback levels.
type Provenance string

const (
	// ProvenanceFresh means the table came from a live rate-source fetch.
	ProvenanceFresh Provenance = "fresh"
	// ProvenanceStaleCache means the fetch failed and the table came from the
	// most recent persisted snapshot.
	ProvenanceStaleCache Provenance = "stale-cache"
	// ProvenanceDefault means both the fetch and the history lookup failed
	// and the hardcoded last-resort constants are in use.
	ProvenanceDefault Provenance = "default"
)

// Snapshot is an immutable rate table against the base currency.
// Superseded snapshots are never mutated; a new row is appended per fetch.
type Snapshot struct {
	ID        int64                              `json:"id"`
	Base      money.Currency                     `json:"base"`
	Rates     map[money.Currency]decimal.Decimal `json:"rates"`
	FetchedAt time.Time                          `json:"fetched_at"`
}

// Rate returns the units of c per one base unit. The base itself is 1.
func (s *Snapshot) Rate(c money.Currency) decimal.Decimal {
	if c == s.Base {
		return decimal.NewFromInt(1)
	}
	return s.Rates[c]
}

// DefaultSnapshot returns the hardcoded last-resort rate table used when the
// rate source and the persisted history are both unavailable.
func DefaultSnapshot() *Snapshot {
	return &Snapshot{
		Base: money.Base,
		Rates: map[money.Currency]decimal.Decimal{
			money.USD: decimal.NewFromInt(1),
			money.BRL: decimal.RequireFromString("5.20"),
			money.EUR: decimal.RequireFromString("0.92"),
		},
		FetchedAt: time.Now(),
	}
}
