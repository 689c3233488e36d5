package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mateus-bonette00/qota-store/internal/domain/investment"
	"github.com/mateus-bonette00/qota-store/internal/platform/persistence"
)

// InvestmentRepository implements the investment.Repository interface for PostgreSQL
type InvestmentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewInvestmentRepository creates a new PostgreSQL investment repository.
func NewInvestmentRepository(logger *slog.Logger, db *persistence.PostgresDB) investment.Repository {
	return &InvestmentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

func (r *InvestmentRepository) WithTx(tx pgx.Tx) investment.Repository {
	return &InvestmentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const investmentColumns = `id, date, category, description, amount, currency, amount_usd, amount_brl, amount_eur, method, account, payer, created_at`

func scanInvestment(row pgx.Row) (*investment.Investment, error) {
	var inv investment.Investment
	err := row.Scan(
		&inv.ID,
		&inv.Date,
		&inv.Category,
		&inv.Description,
		&inv.Amount,
		&inv.Currency,
		&inv.Shadow.USD,
		&inv.Shadow.BRL,
		&inv.Shadow.EUR,
		&inv.Method,
		&inv.Account,
		&inv.Payer,
		&inv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// List retrieves investments matching the filter, newest first.
func (r *InvestmentRepository) List(ctx context.Context, filter investment.Filter) ([]*investment.Investment, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Month != "" {
		args = append(args, filter.Month)
		conditions = append(conditions, fmt.Sprintf("to_char(date, 'YYYY-MM') = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("date <= $%d", len(args)))
	}

	query := `SELECT ` + investmentColumns + ` FROM investments`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list investments", "error", err)
		return nil, fmt.Errorf("failed to list investments: %w", err)
	}
	defer rows.Close()

	var investments []*investment.Investment
	for rows.Next() {
		inv, err := scanInvestment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan investment: %w", err)
		}
		investments = append(investments, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate investments: %w", err)
	}

	return investments, nil
}

// GetByID retrieves an investment by its ID
func (r *InvestmentRepository) GetByID(ctx context.Context, id int64) (*investment.Investment, error) {
	query := `SELECT ` + investmentColumns + ` FROM investments WHERE id = $1`

	inv, err := scanInvestment(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, investment.ErrInvestmentNotFound{ID: id}
		}
		r.logger.Error("Failed to get investment", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get investment: %w", err)
	}

	return inv, nil
}

// Create stores a new investment and fills in its generated ID.
func (r *InvestmentRepository) Create(ctx context.Context, inv *investment.Investment) error {
	query := `
		INSERT INTO investments (date, category, description, amount, currency, amount_usd, amount_brl, amount_eur, method, account, payer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		inv.Date,
		inv.Category,
		inv.Description,
		inv.Amount,
		inv.Currency,
		inv.Shadow.USD,
		inv.Shadow.BRL,
		inv.Shadow.EUR,
		inv.Method,
		inv.Account,
		inv.Payer,
		inv.CreatedAt,
	).Scan(&inv.ID)
	if err != nil {
		r.logger.Error("Failed to create investment", "error", err)
		return fmt.Errorf("failed to create investment: %w", err)
	}

	return nil
}

// Update rewrites all mutable fields of an existing investment.
func (r *InvestmentRepository) Update(ctx context.Context, inv *investment.Investment) error {
	query := `
		UPDATE investments
		SET date = $1, category = $2, description = $3, amount = $4, currency = $5,
		    amount_usd = $6, amount_brl = $7, amount_eur = $8, method = $9, account = $10, payer = $11
		WHERE id = $12
	`

	tag, err := r.querier.Exec(ctx, query,
		inv.Date,
		inv.Category,
		inv.Description,
		inv.Amount,
		inv.Currency,
		inv.Shadow.USD,
		inv.Shadow.BRL,
		inv.Shadow.EUR,
		inv.Method,
		inv.Account,
		inv.Payer,
		inv.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update investment", "id", inv.ID, "error", err)
		return fmt.Errorf("failed to update investment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return investment.ErrInvestmentNotFound{ID: inv.ID}
	}

	return nil
}

// Delete removes an investment, reporting whether a row existed.
func (r *InvestmentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.querier.Exec(ctx, `DELETE FROM investments WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete investment", "id", id, "error", err)
		return false, fmt.Errorf("failed to delete investment: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Totals sums the USD and BRL shadow columns, optionally for one month.
func (r *InvestmentRepository) Totals(ctx context.Context, month string) (investment.Totals, error) {
	query := `
		SELECT COALESCE(SUM(amount_usd), 0), COALESCE(SUM(amount_brl), 0)
		FROM investments
	`
	var args []interface{}
	if month != "" {
		query += ` WHERE to_char(date, 'YYYY-MM') = $1`
		args = append(args, month)
	}

	var totals investment.Totals
	if err := r.querier.QueryRow(ctx, query, args...).Scan(&totals.USD, &totals.BRL); err != nil {
		r.logger.Error("Failed to sum investments", "month", month, "error", err)
		return investment.Totals{}, fmt.Errorf("failed to sum investments: %w", err)
	}

	return totals, nil
}

// MonthlyTotals returns USD sums grouped by calendar month, oldest first.
func (r *InvestmentRepository) MonthlyTotals(ctx context.Context) ([]investment.MonthTotal, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM') AS month, COALESCE(SUM(amount_usd), 0)
		FROM investments
		GROUP BY month
		ORDER BY month
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to sum investments by month", "error", err)
		return nil, fmt.Errorf("failed to sum investments by month: %w", err)
	}
	defer rows.Close()

	var totals []investment.MonthTotal
	for rows.Next() {
		var mt investment.MonthTotal
		if err := rows.Scan(&mt.Month, &mt.USD); err != nil {
			return nil, fmt.Errorf("failed to scan investment month total: %w", err)
		}
		totals = append(totals, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate investment month totals: %w", err)
	}

	return totals, nil
}
