package product

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Filter narrows List results. Zero values mean "no constraint".
// SKU matches as a case-insensitive substring; ASIN matches exactly.
type Filter struct {
	Status   Status
	Category string
	SKU      string
	ASIN     string
	Supplier string
}

// Repository defines product persistence operations
type Repository interface {
	List(ctx context.Context, filter Filter) ([]*Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)

	// FindBySKU and FindByASIN return (nil, nil) when nothing matches;
	// when historical rows share a key, the first match is canonical
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByASIN(ctx context.Context, asin string) (*Product, error)

	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	UpdateStatus(ctx context.Context, id int64, status Status) (*Product, error)
	Delete(ctx context.Context, id int64) (bool, error)

	// DecrementStock atomically sets stock_qty = max(0, stock_qty - qty).
	// It never fails on underflow; the result is clamped at zero.
	DecrementStock(ctx context.Context, id int64, qty int) (*Product, error)

	// SetStock replaces the stock level, used by inventory reconciliation
	SetStock(ctx context.Context, id int64, qty int) error

	// BackfillASIN fills a missing ASIN discovered during inventory sync
	BackfillASIN(ctx context.Context, id int64, asin string) error

	WithTx(tx pgx.Tx) Repository
}

// ErrProductNotFound indicates a missing product
type ErrProductNotFound struct {
	ID int64
}

func (e ErrProductNotFound) Error() string {
	return fmt.Sprintf("product not found: %d", e.ID)
}
