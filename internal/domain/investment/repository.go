package investment

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Month string // calendar month, YYYY-MM
	From  *time.Time
	To    *time.Time
}

// Totals carries summed shadow values for the two reporting currencies.
type Totals struct {
	USD decimal.Decimal
	BRL decimal.Decimal
}

// MonthTotal is one month's summed USD contribution.
type MonthTotal struct {
	Month string // YYYY-MM
	USD   decimal.Decimal
}

// Repository defines investment persistence operations
type Repository interface {
	List(ctx context.Context, filter Filter) ([]*Investment, error)
	GetByID(ctx context.Context, id int64) (*Investment, error)
	Create(ctx context.Context, inv *Investment) error
	Update(ctx context.Context, inv *Investment) error
	Delete(ctx context.Context, id int64) (bool, error)

	// Totals sums shadow USD/BRL values, optionally for one month ("" = all time)
	Totals(ctx context.Context, month string) (Totals, error)

	// MonthlyTotals returns per-month USD sums for the monthly series
	MonthlyTotals(ctx context.Context) ([]MonthTotal, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrInvestmentNotFound indicates a missing investment
type ErrInvestmentNotFound struct {
	ID int64
}

func (e ErrInvestmentNotFound) Error() string {
	return fmt.Sprintf("investment not found: %d", e.ID)
}
