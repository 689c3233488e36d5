package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mateus-bonette00/qota-store/internal/domain/balance"
	"github.com/mateus-bonette00/qota-store/internal/platform/persistence"
)

// BalanceRepository implements the balance.Repository interface for PostgreSQL
type BalanceRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewBalanceRepository creates a new PostgreSQL balance snapshot repository.
func NewBalanceRepository(logger *slog.Logger, db *persistence.PostgresDB) balance.Repository {
	return &BalanceRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *BalanceRepository) WithTx(tx pgx.Tx) balance.Repository {
	return &BalanceRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// ExistsForDay reports whether a snapshot was already taken on the calendar day.
func (r *BalanceRepository) ExistsForDay(ctx context.Context, day time.Time) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM balance_snapshots WHERE date = $1)`

	truncated := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	var exists bool
	if err := r.querier.QueryRow(ctx, query, truncated).Scan(&exists); err != nil {
		r.logger.Error("Failed to check balance snapshot for day", "day", truncated, "error", err)
		return false, fmt.Errorf("failed to check balance snapshot for day: %w", err)
	}

	return exists, nil
}

// Create stores a new balance snapshot and fills in its generated ID.
func (r *BalanceRepository) Create(ctx context.Context, s *balance.Snapshot) error {
	query := `
		INSERT INTO balance_snapshots (date, available, pending, currency, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		s.Date,
		s.Available,
		s.Pending,
		s.Currency,
		s.CreatedAt,
	).Scan(&s.ID)
	if err != nil {
		r.logger.Error("Failed to create balance snapshot", "error", err)
		return fmt.Errorf("failed to create balance snapshot: %w", err)
	}

	return nil
}

// Latest returns the most recent snapshot, or nil, nil when none exist.
func (r *BalanceRepository) Latest(ctx context.Context) (*balance.Snapshot, error) {
	query := `
		SELECT id, date, available, pending, currency, created_at
		FROM balance_snapshots
		ORDER BY date DESC, id DESC
		LIMIT 1
	`

	var s balance.Snapshot
	err := r.querier.QueryRow(ctx, query).Scan(&s.ID, &s.Date, &s.Available, &s.Pending, &s.Currency, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to load latest balance snapshot", "error", err)
		return nil, fmt.Errorf("failed to load latest balance snapshot: %w", err)
	}

	return &s, nil
}
