package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mateus-bonette00/qota-store/internal/domain/revenue"
	"github.com/mateus-bonette00/qota-store/internal/platform/persistence"
)

// RevenueRepository implements the revenue.Repository interface for PostgreSQL
type RevenueRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRevenueRepository creates a new PostgreSQL revenue-event repository.
func NewRevenueRepository(logger *slog.Logger, db *persistence.PostgresDB) revenue.Repository {
	return &RevenueRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *RevenueRepository) WithTx(tx pgx.Tx) revenue.Repository {
	return &RevenueRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const revenueColumns = `id, date, origin, description, amount, currency, amount_usd, amount_brl, amount_eur,
	product_id, sku, asin, qty, gross, cost_of_goods, marketplace_fee, ads, shipping, discounts, net_profit, created_at`

func scanEvent(row pgx.Row) (*revenue.Event, error) {
	var e revenue.Event
	err := row.Scan(
		&e.ID,
		&e.Date,
		&e.Origin,
		&e.Description,
		&e.Amount,
		&e.Currency,
		&e.Shadow.USD,
		&e.Shadow.BRL,
		&e.Shadow.EUR,
		&e.ProductID,
		&e.SKU,
		&e.ASIN,
		&e.Qty,
		&e.Gross,
		&e.CostOfGoods,
		&e.MarketplaceFee,
		&e.Ads,
		&e.Shipping,
		&e.Discounts,
		&e.NetProfit,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List retrieves revenue events matching the filter, newest first.
func (r *RevenueRepository) List(ctx context.Context, filter revenue.Filter) ([]*revenue.Event, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Month != "" {
		args = append(args, filter.Month)
		conditions = append(conditions, fmt.Sprintf("to_char(date, 'YYYY-MM') = $%d", len(args)))
	}
	if filter.Origin != "" {
		args = append(args, filter.Origin)
		conditions = append(conditions, fmt.Sprintf("origin = $%d", len(args)))
	}
	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		conditions = append(conditions, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if filter.SKU != "" {
		args = append(args, filter.SKU)
		conditions = append(conditions, fmt.Sprintf("sku = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}

	query := `SELECT ` + revenueColumns + ` FROM revenue_events`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list revenue events", "error", err)
		return nil, fmt.Errorf("failed to list revenue events: %w", err)
	}
	defer rows.Close()

	var events []*revenue.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan revenue event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate revenue events: %w", err)
	}

	return events, nil
}

// GetByID retrieves a revenue event by its ID
func (r *RevenueRepository) GetByID(ctx context.Context, id int64) (*revenue.Event, error) {
	query := `SELECT ` + revenueColumns + ` FROM revenue_events WHERE id = $1`

	e, err := scanEvent(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, revenue.ErrEventNotFound{ID: id}
		}
		r.logger.Error("Failed to get revenue event", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get revenue event: %w", err)
	}

	return e, nil
}

// Create stores a new revenue event and fills in its generated ID.
func (r *RevenueRepository) Create(ctx context.Context, e *revenue.Event) error {
	query := `
		INSERT INTO revenue_events (date, origin, description, amount, currency, amount_usd, amount_brl, amount_eur,
			product_id, sku, asin, qty, gross, cost_of_goods, marketplace_fee, ads, shipping, discounts, net_profit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		e.Date,
		e.Origin,
		e.Description,
		e.Amount,
		e.Currency,
		e.Shadow.USD,
		e.Shadow.BRL,
		e.Shadow.EUR,
		e.ProductID,
		e.SKU,
		e.ASIN,
		e.Qty,
		e.Gross,
		e.CostOfGoods,
		e.MarketplaceFee,
		e.Ads,
		e.Shipping,
		e.Discounts,
		e.NetProfit,
		e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		r.logger.Error("Failed to create revenue event", "sku", e.SKU, "error", err)
		return fmt.Errorf("failed to create revenue event: %w", err)
	}

	return nil
}

// Update rewrites all mutable fields of an existing revenue event.
func (r *RevenueRepository) Update(ctx context.Context, e *revenue.Event) error {
	query := `
		UPDATE revenue_events
		SET date = $1, origin = $2, description = $3, amount = $4, currency = $5,
		    amount_usd = $6, amount_brl = $7, amount_eur = $8, product_id = $9, sku = $10, asin = $11, qty = $12,
		    gross = $13, cost_of_goods = $14, marketplace_fee = $15, ads = $16, shipping = $17, discounts = $18, net_profit = $19
		WHERE id = $20
	`

	tag, err := r.querier.Exec(ctx, query,
		e.Date,
		e.Origin,
		e.Description,
		e.Amount,
		e.Currency,
		e.Shadow.USD,
		e.Shadow.BRL,
		e.Shadow.EUR,
		e.ProductID,
		e.SKU,
		e.ASIN,
		e.Qty,
		e.Gross,
		e.CostOfGoods,
		e.MarketplaceFee,
		e.Ads,
		e.Shipping,
		e.Discounts,
		e.NetProfit,
		e.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update revenue event", "id", e.ID, "error", err)
		return fmt.Errorf("failed to update revenue event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return revenue.ErrEventNotFound{ID: e.ID}
	}

	return nil
}

// Delete removes a revenue event, reporting whether a row existed.
func (r *RevenueRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.querier.Exec(ctx, `DELETE FROM revenue_events WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete revenue event", "id", id, "error", err)
		return false, fmt.Errorf("failed to delete revenue event: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ExistsByDedupKey reports whether an event already covers the (asin, sku,
// day) key. The day bucket is pinned to UTC so the session timezone cannot
// shift it; the expression matches the unique dedup index.
func (r *RevenueRepository) ExistsByDedupKey(ctx context.Context, key revenue.DedupKey) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM revenue_events
			WHERE asin = $1 AND sku = $2 AND (date AT TIME ZONE 'UTC')::date = $3::date
		)
	`

	var exists bool
	if err := r.querier.QueryRow(ctx, query, key.ASIN, key.SKU, key.Day).Scan(&exists); err != nil {
		r.logger.Error("Failed to check revenue dedup key", "key", key.String(), "error", err)
		return false, fmt.Errorf("failed to check revenue dedup key: %w", err)
	}

	return exists, nil
}

// Totals sums the USD and BRL shadow columns, optionally for one month.
func (r *RevenueRepository) Totals(ctx context.Context, month string) (revenue.Totals, error) {
	query := `
		SELECT COALESCE(SUM(amount_usd), 0), COALESCE(SUM(amount_brl), 0)
		FROM revenue_events
	`
	var args []interface{}
	if month != "" {
		query += ` WHERE to_char(date, 'YYYY-MM') = $1`
		args = append(args, month)
	}

	var totals revenue.Totals
	if err := r.querier.QueryRow(ctx, query, args...).Scan(&totals.USD, &totals.BRL); err != nil {
		r.logger.Error("Failed to sum revenue events", "month", month, "error", err)
		return revenue.Totals{}, fmt.Errorf("failed to sum revenue events: %w", err)
	}

	return totals, nil
}

// MonthlyTotals returns USD sums grouped by calendar month, oldest first.
func (r *RevenueRepository) MonthlyTotals(ctx context.Context) ([]revenue.MonthTotal, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM') AS month, COALESCE(SUM(amount_usd), 0)
		FROM revenue_events
		GROUP BY month
		ORDER BY month
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to sum revenue by month", "error", err)
		return nil, fmt.Errorf("failed to sum revenue by month: %w", err)
	}
	defer rows.Close()

	var totals []revenue.MonthTotal
	for rows.Next() {
		var mt revenue.MonthTotal
		if err := rows.Scan(&mt.Month, &mt.USD); err != nil {
			return nil, fmt.Errorf("failed to scan revenue month total: %w", err)
		}
		totals = append(totals, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate revenue month totals: %w", err)
	}

	return totals, nil
}

// SalesRanking groups sold quantities by (sku, product name) within
// [from, to) and returns the top rows.
func (r *RevenueRepository) SalesRanking(ctx context.Context, from, to time.Time, ascending bool, limit int) ([]revenue.RankRow, error) {
	direction := "DESC"
	if ascending {
		direction = "ASC"
	}

	query := `
		SELECT re.sku, COALESCE(p.name, re.description) AS name, COALESCE(SUM(re.qty), 0) AS qty
		FROM revenue_events re
		LEFT JOIN products p ON p.id = re.product_id
		WHERE re.date >= $1 AND re.date < $2
		GROUP BY re.sku, COALESCE(p.name, re.description)
		ORDER BY qty ` + direction + `
		LIMIT $3
	`

	rows, err := r.querier.Query(ctx, query, from, to, limit)
	if err != nil {
		r.logger.Error("Failed to rank sales", "error", err)
		return nil, fmt.Errorf("failed to rank sales: %w", err)
	}
	defer rows.Close()

	var ranking []revenue.RankRow
	for rows.Next() {
		var row revenue.RankRow
		if err := rows.Scan(&row.SKU, &row.Name, &row.Qty); err != nil {
			return nil, fmt.Errorf("failed to scan sales rank row: %w", err)
		}
		ranking = append(ranking, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sales ranking: %w", err)
	}

	return ranking, nil
}
