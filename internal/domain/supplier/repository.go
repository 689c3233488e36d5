package supplier

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// Filter narrows List results. Search matches name, URL and email as a
// case-insensitive substring; empty means "no constraint".
type Filter struct {
	Search string
}

// Repository defines supplier persistence operations
type Repository interface {
	// List returns suppliers matching the filter, ordered by name
	List(ctx context.Context, filter Filter) ([]*Supplier, error)
	GetByID(ctx context.Context, id int64) (*Supplier, error)
	Create(ctx context.Context, s *Supplier) error
	Update(ctx context.Context, s *Supplier) error
	Delete(ctx context.Context, id int64) (bool, error)

	WithTx(tx pgx.Tx) Repository
}

// ErrSupplierNotFound indicates a missing supplier
type ErrSupplierNotFound struct {
	ID int64
}

func (e ErrSupplierNotFound) Error() string {
	return fmt.Sprintf("supplier not found: %d", e.ID)
}
