package revenue

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	Month     string // calendar month, YYYY-MM
	Origin    string
	ProductID *int64
	SKU       string
	From      *time.Time
	To        *time.Time
}

// Totals carries summed shadow values for the two reporting currencies.
type Totals struct {
	USD decimal.Decimal
	BRL decimal.Decimal
}

// MonthTotal is one month's summed USD revenue.
type MonthTotal struct {
	Month string // YYYY-MM
	USD   decimal.Decimal
}

// RankRow is one entry of the product sales ranking: a (sku, name) group
// with its summed quantity over the requested window.
type RankRow struct {
	SKU  string `json:"sku"`
	Name string `json:"name"`
	Qty  int    `json:"qty"`
}

// Repository defines revenue-event persistence operations
type Repository interface {
	List(ctx context.Context, filter Filter) ([]*Event, error)
	GetByID(ctx context.Context, id int64) (*Event, error)
	Create(ctx context.Context, e *Event) error
	Update(ctx context.Context, e *Event) error
	Delete(ctx context.Context, id int64) (bool, error)

	// ExistsByDedupKey is a presence check only: once an event exists for a
	// key, later feed deliveries are skipped, never merged
	ExistsByDedupKey(ctx context.Context, key DedupKey) (bool, error)

	// Totals sums shadow USD/BRL values, optionally for one month ("" = all time)
	Totals(ctx context.Context, month string) (Totals, error)

	// MonthlyTotals returns per-month USD sums for the monthly series
	MonthlyTotals(ctx context.Context) ([]MonthTotal, error)

	// SalesRanking groups events by (sku, product name) within [from, to),
	// sums quantities and returns the top rows in the requested order.
	// Tie order between equal quantities is not specified.
	SalesRanking(ctx context.Context, from, to time.Time, ascending bool, limit int) ([]RankRow, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrEventNotFound indicates a missing revenue event
type ErrEventNotFound struct {
	ID int64
}

func (e ErrEventNotFound) Error() string {
	return fmt.Sprintf("revenue event not found: %d", e.ID)
}
