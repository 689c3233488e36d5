package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/mateus-bonette00/qota-store/internal/domain/product"
	"github.com/mateus-bonette00/qota-store/internal/platform/persistence"
)

// ProductRepository implements the product.Repository interface for PostgreSQL
type ProductRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewProductRepository creates a new PostgreSQL product repository.
func NewProductRepository(logger *slog.Logger, db *persistence.PostgresDB) product.Repository {
	return &ProductRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction. The sync engine pairs this
// with the revenue repository so a sale's stock decrement commits with its
// revenue row.
func (r *ProductRepository) WithTx(tx pgx.Tx) product.Repository {
	return &ProductRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const productColumns = `id, name, sku, upc, asin, status, stock_qty, original_qty, category, supplier_name,
	base_cost, freight, tax, prep, purchase_currency, sell_price, marketplace_fee, added_date, listed_date, created_at`

func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.SKU,
		&p.UPC,
		&p.ASIN,
		&p.Status,
		&p.StockQty,
		&p.OriginalQty,
		&p.Category,
		&p.SupplierName,
		&p.BaseCost,
		&p.Freight,
		&p.Tax,
		&p.Prep,
		&p.PurchaseCurrency,
		&p.SellPrice,
		&p.MarketplaceFee,
		&p.AddedDate,
		&p.ListedDate,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List retrieves products matching the filter, newest first.
func (r *ProductRepository) List(ctx context.Context, filter product.Filter) ([]*product.Product, error) {
	var (
		conditions []string
		args       []interface{}
	)

	if filter.Status != "" {
		args = append(args, filter.Status)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.SKU != "" {
		args = append(args, "%"+filter.SKU+"%")
		conditions = append(conditions, fmt.Sprintf("sku ILIKE $%d", len(args)))
	}
	if filter.ASIN != "" {
		args = append(args, filter.ASIN)
		conditions = append(conditions, fmt.Sprintf("asin = $%d", len(args)))
	}
	if filter.Supplier != "" {
		args = append(args, filter.Supplier)
		conditions = append(conditions, fmt.Sprintf("supplier_name = $%d", len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY added_date DESC, id DESC"

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list products", "error", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var products []*product.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate products: %w", err)
	}

	return products, nil
}

// GetByID retrieves a product by its ID
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrProductNotFound{ID: id}
		}
		r.logger.Error("Failed to get product", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	return p, nil
}

// FindBySKU retrieves the first product carrying the SKU, oldest row first so
// the match is stable across syncs. Returns nil, nil when nothing matches.
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1 ORDER BY id LIMIT 1`

	p, err := scanProduct(r.querier.QueryRow(ctx, query, sku))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to find product by SKU", "sku", sku, "error", err)
		return nil, fmt.Errorf("failed to find product by SKU: %w", err)
	}

	return p, nil
}

// FindByASIN retrieves the first product carrying the ASIN. Returns nil, nil
// when nothing matches.
func (r *ProductRepository) FindByASIN(ctx context.Context, asin string) (*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE asin = $1 ORDER BY id LIMIT 1`

	p, err := scanProduct(r.querier.QueryRow(ctx, query, asin))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to find product by ASIN", "asin", asin, "error", err)
		return nil, fmt.Errorf("failed to find product by ASIN: %w", err)
	}

	return p, nil
}

// Create stores a new product and fills in its generated ID.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (name, sku, upc, asin, status, stock_qty, original_qty, category, supplier_name,
			base_cost, freight, tax, prep, purchase_currency, sell_price, marketplace_fee, added_date, listed_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		p.Name,
		p.SKU,
		p.UPC,
		p.ASIN,
		p.Status,
		p.StockQty,
		p.OriginalQty,
		p.Category,
		p.SupplierName,
		p.BaseCost,
		p.Freight,
		p.Tax,
		p.Prep,
		p.PurchaseCurrency,
		p.SellPrice,
		p.MarketplaceFee,
		p.AddedDate,
		p.ListedDate,
		p.CreatedAt,
	).Scan(&p.ID)
	if err != nil {
		r.logger.Error("Failed to create product", "sku", p.SKU, "error", err)
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update rewrites all mutable fields of an existing product.
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	query := `
		UPDATE products
		SET name = $1, sku = $2, upc = $3, asin = $4, status = $5, stock_qty = $6, original_qty = $7,
		    category = $8, supplier_name = $9, base_cost = $10, freight = $11, tax = $12, prep = $13,
		    purchase_currency = $14, sell_price = $15, marketplace_fee = $16, added_date = $17, listed_date = $18
		WHERE id = $19
	`

	tag, err := r.querier.Exec(ctx, query,
		p.Name,
		p.SKU,
		p.UPC,
		p.ASIN,
		p.Status,
		p.StockQty,
		p.OriginalQty,
		p.Category,
		p.SupplierName,
		p.BaseCost,
		p.Freight,
		p.Tax,
		p.Prep,
		p.PurchaseCurrency,
		p.SellPrice,
		p.MarketplaceFee,
		p.AddedDate,
		p.ListedDate,
		p.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update product", "id", p.ID, "error", err)
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrProductNotFound{ID: p.ID}
	}

	return nil
}

// UpdateStatus moves a product to a new pipeline stage and returns the
// updated row.
func (r *ProductRepository) UpdateStatus(ctx context.Context, id int64, status product.Status) (*product.Product, error) {
	query := `
		UPDATE products SET status = $1 WHERE id = $2
		RETURNING ` + productColumns

	p, err := scanProduct(r.querier.QueryRow(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrProductNotFound{ID: id}
		}
		r.logger.Error("Failed to update product status", "id", id, "error", err)
		return nil, fmt.Errorf("failed to update product status: %w", err)
	}

	return p, nil
}

// Delete removes a product, reporting whether a row existed.
func (r *ProductRepository) Delete(ctx context.Context, id int64) (bool, error) {
	tag, err := r.querier.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete product", "id", id, "error", err)
		return false, fmt.Errorf("failed to delete product: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DecrementStock subtracts qty from the stock level, clamping at zero, and
// returns the updated row. The clamp happens in SQL so concurrent decrements
// can never drive the level negative.
func (r *ProductRepository) DecrementStock(ctx context.Context, id int64, qty int) (*product.Product, error) {
	query := `
		UPDATE products SET stock_qty = GREATEST(0, stock_qty - $1) WHERE id = $2
		RETURNING ` + productColumns

	p, err := scanProduct(r.querier.QueryRow(ctx, query, qty, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrProductNotFound{ID: id}
		}
		r.logger.Error("Failed to decrement product stock", "id", id, "qty", qty, "error", err)
		return nil, fmt.Errorf("failed to decrement product stock: %w", err)
	}

	return p, nil
}

// SetStock replaces the stock level outright.
func (r *ProductRepository) SetStock(ctx context.Context, id int64, qty int) error {
	tag, err := r.querier.Exec(ctx, `UPDATE products SET stock_qty = $1 WHERE id = $2`, qty, id)
	if err != nil {
		r.logger.Error("Failed to set product stock", "id", id, "error", err)
		return fmt.Errorf("failed to set product stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrProductNotFound{ID: id}
	}
	return nil
}

// BackfillASIN fills in an ASIN learned from the marketplace inventory feed.
func (r *ProductRepository) BackfillASIN(ctx context.Context, id int64, asin string) error {
	tag, err := r.querier.Exec(ctx, `UPDATE products SET asin = $1 WHERE id = $2`, asin, id)
	if err != nil {
		r.logger.Error("Failed to backfill product ASIN", "id", id, "error", err)
		return fmt.Errorf("failed to backfill product ASIN: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrProductNotFound{ID: id}
	}
	return nil
}
