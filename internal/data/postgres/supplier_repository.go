package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/mateus-bonette00/qota-store/internal/domain/supplier"
	"github.com/mateus-bonette00/qota-store/internal/platform/persistence"
)

// SupplierRepository implements the supplier.Repository interface for PostgreSQL
type SupplierRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewSupplierRepository creates a new PostgreSQL supplier repository.
func NewSupplierRepository(logger *slog.Logger, db *persistence.PostgresDB) supplier.Repository {
	return &SupplierRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction.
func (r *SupplierRepository) WithTx(tx pgx.Tx) supplier.Repository {
	return &SupplierRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const supplierColumns = `id, name, url, email, notes, created_at`

func scanSupplier(row pgx.Row) (*supplier.Supplier, error) {
	var s supplier.Supplier
	err := row.Scan(
		&s.ID,
		&s.Name,
		&s.URL,
		&s.Email,
		&s.Notes,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// List retrieves suppliers ordered by name; a search term matches name, URL
// and email as a case-insensitive substring.
func (r *SupplierRepository) List(ctx context.Context, filter supplier.Filter) ([]*supplier.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers`
	var args []interface{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += ` WHERE name ILIKE $1 OR url ILIKE $1 OR email ILIKE $1`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list suppliers", "error", err)
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	var suppliers []*supplier.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate suppliers: %w", err)
	}

	return suppliers, nil
}

// GetByID retrieves a supplier by its ID
func (r *SupplierRepository) GetByID(ctx context.Context, id int64) (*supplier.Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM suppliers WHERE id = $1`

	s, err := scanSupplier(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, supplier.ErrSupplierNotFound{ID: id}
		}
		r.logger.Error("Failed to get supplier", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get supplier: %w", err)
	}

	return s, nil
}

// Create stores a new supplier and fills in its generated ID.
func (r *SupplierRepository) Create(ctx context.Context, s *supplier.Supplier) error {
	query := `
		INSERT INTO suppliers (name, url, email, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		s.Name,
		s.URL,
		s.Email,
		s.Notes,
	).Scan(&s.ID)
	if err != nil {
		r.logger.Error("Failed to create supplier", "error", err)
		return fmt.Errorf("failed to create supplier: %w", err)
	}

	return nil
}

// Update rewrites all mutable fields of an existing supplier.
func (r *SupplierRepository) Update(ctx context.Context, s *supplier.Supplier) error {
	query := `
		UPDATE suppliers
		SET name = $1, url = $2, email = $3, notes = $4
		WHERE id = $5
	`

	tag, err := r.querier.Exec(ctx, query,
		s.Name,
		s.URL,
		s.Email,
		s.Notes,
		s.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update supplier", "id", s.ID, "error", err)
		return fmt.Errorf("failed to update supplier: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return supplier.ErrSupplierNotFound{ID: s.ID}
	}

	return nil
}

// Delete removes a supplier, reporting whether a row existed.
func (r *SupplierRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.querier.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete supplier", "id", id, "error", err)
		return false, fmt.Errorf("failed to delete supplier: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
