package expense

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Month    string // calendar month, YYYY-MM
	From     *time.Time
	To       *time.Time
	Category string
}

// Totals carries summed shadow values for the two reporting currencies.
type Totals struct {
	USD decimal.Decimal
	BRL decimal.Decimal
}

// MonthTotal is one month's summed USD outflow.
type MonthTotal struct {
	Month string // YYYY-MM
	USD   decimal.Decimal
}

// Repository defines expense persistence operations
type Repository interface {
	List(ctx context.Context, filter Filter) ([]*Expense, error)
	GetByID(ctx context.Context, id int64) (*Expense, error)
	Create(ctx context.Context, e *Expense) error
	Update(ctx context.Context, e *Expense) error
	Delete(ctx context.Context, id int64) (bool, error)

	// Totals sums shadow USD/BRL values, optionally for one month ("" = all time)
	Totals(ctx context.Context, month string) (Totals, error)

	// MonthlyTotals returns per-month USD sums for the monthly series
	MonthlyTotals(ctx context.Context) ([]MonthTotal, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrExpenseNotFound indicates a missing expense
type ErrExpenseNotFound struct {
	ID int64
}

func (e ErrExpenseNotFound) Error() string {
	return fmt.Sprintf("expense not found: %d", e.ID)
}
