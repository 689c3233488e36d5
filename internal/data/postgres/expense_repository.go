// Package postgres provides PostgreSQL implementations of the domain
// repositories. Every money column is stored as NUMERIC and scanned into
// decimals; shadow columns are written alongside the native amount so
// aggregation queries never join against the rate table.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mateus-bonette00/qota-store/internal/domain/expense"
	"github.com/mateus-bonette00/qota-store/internal/platform/persistence"
)

// ExpenseRepository implements the expense.Repository interface for PostgreSQL
type ExpenseRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewExpenseRepository creates a new PostgreSQL expense repository.
func NewExpenseRepository(logger *slog.Logger, db *persistence.PostgresDB) expense.Repository {
	return &ExpenseRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so expense writes can join
// atomic multi-repository operations.
func (r *ExpenseRepository) WithTx(tx pgx.Tx) expense.Repository {
	return &ExpenseRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const expenseColumns = `id, date, category, description, amount, currency, amount_usd, amount_brl, amount_eur, method, account, payer, created_at`

func scanExpense(row pgx.Row) (*expense.Expense, error) {
	var e expense.Expense
	err := row.Scan(
		&e.ID,
		&e.Date,
		&e.Category,
		&e.Description,
		&e.Amount,
		&e.Currency,
		&e.Shadow.USD,
		&e.Shadow.BRL,
		&e.Shadow.EUR,
		&e.Method,
		&e.Account,
		&e.Payer,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// List retrieves expenses matching the filter, newest first.
func (r *ExpenseRepository) List(ctx context.Context, filter expense.Filter) ([]*expense.Expense, error) {
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
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + expenseColumns + ` FROM expenses`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list expenses", "error", err)
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*expense.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	return expenses, nil
}

// GetByID retrieves an expense by its ID
func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*expense.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE id = $1`

	e, err := scanExpense(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, expense.ErrExpenseNotFound{ID: id}
		}
		r.logger.Error("Failed to get expense", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return e, nil
}

// Create stores a new expense and fills in its generated ID.
func (r *ExpenseRepository) Create(ctx context.Context, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (date, category, description, amount, currency, amount_usd, amount_brl, amount_eur, method, account, payer, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		e.Date,
		e.Category,
		e.Description,
		e.Amount,
		e.Currency,
		e.Shadow.USD,
		e.Shadow.BRL,
		e.Shadow.EUR,
		e.Method,
		e.Account,
		e.Payer,
		e.CreatedAt,
	).Scan(&e.ID)
	if err != nil {
		r.logger.Error("Failed to create expense", "error", err)
		return fmt.Errorf("failed to create expense: %w", err)
	}

	return nil
}

// Update rewrites all mutable fields of an existing expense.
func (r *ExpenseRepository) Update(ctx context.Context, e *expense.Expense) error {
	query := `
		UPDATE expenses
		SET date = $1, category = $2, description = $3, amount = $4, currency = $5,
		    amount_usd = $6, amount_brl = $7, amount_eur = $8, method = $9, account = $10, payer = $11
		WHERE id = $12
	`

	tag, err := r.querier.Exec(ctx, query,
		e.Date,
		e.Category,
		e.Description,
		e.Amount,
		e.Currency,
		e.Shadow.USD,
		e.Shadow.BRL,
		e.Shadow.EUR,
		e.Method,
		e.Account,
		e.Payer,
		e.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update expense", "id", e.ID, "error", err)
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return expense.ErrExpenseNotFound{ID: e.ID}
	}

	return nil
}

// Delete removes an expense, reporting whether a row existed.
func (r *ExpenseRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.querier.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete expense", "id", id, "error", err)
		return false, fmt.Errorf("failed to delete expense: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Totals sums the USD and BRL shadow columns, optionally for one month.
func (r *ExpenseRepository) Totals(ctx context.Context, month string) (expense.Totals, error) {
	query := `
		SELECT COALESCE(SUM(amount_usd), 0), COALESCE(SUM(amount_brl), 0)
		FROM expenses
	`
	var args []interface{}
	if month != "" {
		query += ` WHERE to_char(date, 'YYYY-MM') = $1`
		args = append(args, month)
	}

	var totals expense.Totals
	if err := r.querier.QueryRow(ctx, query, args...).Scan(&totals.USD, &totals.BRL); err != nil {
		r.logger.Error("Failed to sum expenses", "month", month, "error", err)
		return expense.Totals{}, fmt.Errorf("failed to sum expenses: %w", err)
	}

	return totals, nil
}

// MonthlyTotals returns USD sums grouped by calendar month, oldest first.
func (r *ExpenseRepository) MonthlyTotals(ctx context.Context) ([]expense.MonthTotal, error) {
	query := `
		SELECT to_char(date, 'YYYY-MM') AS month, COALESCE(SUM(amount_usd), 0)
		FROM expenses
		GROUP BY month
		ORDER BY month
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to sum expenses by month", "error", err)
		return nil, fmt.Errorf("failed to sum expenses by month: %w", err)
	}
	defer rows.Close()

	var totals []expense.MonthTotal
	for rows.Next() {
		var mt expense.MonthTotal
		if err := rows.Scan(&mt.Month, &mt.USD); err != nil {
			return nil, fmt.Errorf("failed to scan expense month total: %w", err)
		}
		totals = append(totals, mt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense month totals: %w", err)
	}

	return totals, nil
}
