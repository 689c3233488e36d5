package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/mateus-bonette00/qota-store/internal/domain/fxrate"
	"github.com/mateus-bonette00/qota-store/internal/domain/money"
	"github.com/mateus-bonette00/qota-store/internal/platform/persistence"
)

// FxRateRepository implements the fxrate.Repository interface for PostgreSQL.
// The history is append-only; rows carry one rate column per non-base
// currency so a snapshot is a single row.
type FxRateRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewFxRateRepository creates a new PostgreSQL exchange-rate history.
func NewFxRateRepository(logger *slog.Logger, db *persistence.PostgresDB) fxrate.Repository {
	return &FxRateRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Append persists a snapshot as a new history row.
func (r *FxRateRepository) Append(ctx context.Context, snap *fxrate.Snapshot) error {
	query := `
		INSERT INTO exchange_rates (base, rate_brl, rate_eur, fetched_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		snap.Base,
		snap.Rate(money.BRL),
		snap.Rate(money.EUR),
		snap.FetchedAt,
	).Scan(&snap.ID)
	if err != nil {
		r.logger.Error("Failed to append exchange rate snapshot", "error", err)
		return fmt.Errorf("failed to append exchange rate snapshot: %w", err)
	}

	return nil
}

// Latest returns the most recently fetched snapshot.
func (r *FxRateRepository) Latest(ctx context.Context) (*fxrate.Snapshot, error) {
	query := `
		SELECT id, base, rate_brl, rate_eur, fetched_at
		FROM exchange_rates
		ORDER BY fetched_at DESC, id DESC
		LIMIT 1
	`

	var (
		snap     fxrate.Snapshot
		brl, eur decimal.Decimal
	)
	err := r.querier.QueryRow(ctx, query).Scan(&snap.ID, &snap.Base, &brl, &eur, &snap.FetchedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fxrate.ErrNoSnapshots
		}
		r.logger.Error("Failed to load latest exchange rate snapshot", "error", err)
		return nil, fmt.Errorf("failed to load latest exchange rate snapshot: %w", err)
	}

	snap.Rates = map[money.Currency]decimal.Decimal{
		money.USD: decimal.NewFromInt(1),
		money.BRL: brl,
		money.EUR: eur,
	}

	return &snap, nil
}
