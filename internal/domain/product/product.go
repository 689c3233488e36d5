// Package product holds the sourced-inventory entity and its cost model.
// A product's cost breakdown is stored in individual columns so the landed
// cost can always be recomputed after the fact; nothing is pre-summed.
package product

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mateus-bonette00/qota-store/internal/domain/money"
)

// Status tracks a product through the sourcing pipeline.
type Status string

const (
	StatusSourcing  Status = "sourcing"
	StatusPurchased Status = "purchased"
	StatusInTransit Status = "in_transit"
	StatusInStock   Status = "in_stock"
	StatusSold      Status = "sold"
)

// Statuses lists the pipeline stages in order.
func Statuses() []Status {
	return []Status{StatusSourcing, StatusPurchased, StatusInTransit, StatusInStock, StatusSold}
}

// Valid reports whether s is a known pipeline stage.
func (s Status) Valid() bool {
	switch s {
	case StatusSourcing, StatusPurchased, StatusInTransit, StatusInStock, StatusSold:
		return true
	}
	return false
}

// Common errors
var (
	ErrEmptyName       = errors.New("product name cannot be empty")
	ErrInvalidStatus   = errors.New("invalid product status")
	ErrInvalidCurrency = errors.New("purchase currency must be one of USD, BRL, EUR")
	ErrNegativeStock   = errors.New("stock quantity cannot be negative")
)

// Product is one sourced item. SKU and ASIN are lookup keys but are not
// guaranteed unique in historical data; the first match is treated as
// canonical.
type Product struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	SKU              string          `json:"sku"`
	UPC              string          `json:"upc"`
	ASIN             string          `json:"asin"`
	Status           Status          `json:"status"`
	StockQty         int             `json:"stock_qty"`
	OriginalQty      int             `json:"original_qty"`
	Category         string          `json:"category"`
	SupplierName     string          `json:"supplier_name"`
	BaseCost         decimal.Decimal `json:"base_cost"`
	Freight          decimal.Decimal `json:"freight"`
	Tax              decimal.Decimal `json:"tax"`
	Prep             decimal.Decimal `json:"prep"`
	PurchaseCurrency money.Currency  `json:"purchase_currency"`
	SellPrice        decimal.Decimal `json:"sell_price"`
	MarketplaceFee   decimal.Decimal `json:"marketplace_fee"` // per unit
	AddedDate        time.Time       `json:"added_date"`
	ListedDate       *time.Time      `json:"listed_date,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

// Validate checks field constraints before persistence.
func (p *Product) Validate() error {
	if p.Name == "" {
		return ErrEmptyName
	}
	if !p.Status.Valid() {
		return ErrInvalidStatus
	}
	if !p.PurchaseCurrency.Valid() {
		return ErrInvalidCurrency
	}
	if p.StockQty < 0 || p.OriginalQty < 0 {
		return ErrNegativeStock
	}
	return nil
}

// LandedUnitCost is the per-unit acquisition cost: base cost plus the unit's
// pro-rata share of freight and tax plus the fixed prep fee. Zero quantity
// means no pro-rata share, not a division error.
func (p *Product) LandedUnitCost() decimal.Decimal {
	proRata := money.SafeDiv(p.Tax.Add(p.Freight), decimal.NewFromInt(int64(p.OriginalQty)))
	return p.BaseCost.Add(proRata).Add(p.Prep)
}

// UnitGrossProfit is the margin on one sold unit after the marketplace fee,
// prep and landed cost of goods.
func (p *Product) UnitGrossProfit() decimal.Decimal {
	proRata := money.SafeDiv(p.Tax.Add(p.Freight), decimal.NewFromInt(int64(p.OriginalQty)))
	costOfGoods := p.BaseCost.Add(proRata)
	return p.SellPrice.Sub(p.MarketplaceFee).Sub(p.Prep).Sub(costOfGoods)
}

// PurchaseOutflow is the implied total spent acquiring the lot:
// (base + prep + fee) per unit times quantity, plus the lot-level freight and
// tax. This is a derived figure, recomputed from the row every time; it is
// never stored as a ledger entry.
func (p *Product) PurchaseOutflow() decimal.Decimal {
	perUnit := p.BaseCost.Add(p.Prep).Add(p.MarketplaceFee)
	return perUnit.Mul(decimal.NewFromInt(int64(p.OriginalQty))).Add(p.Freight).Add(p.Tax)
}

// MarginPercent is the unit gross profit as a percentage of the sell price,
// zero when the product has no sell price yet.
func (p *Product) MarginPercent() decimal.Decimal {
	return money.SafeDiv(p.UnitGrossProfit(), p.SellPrice).Mul(decimal.NewFromInt(100))
}

// AccountingMonth is the YYYY-MM bucket the product's purchase outflow lands
// in: the marketplace listing date when present, else the acquisition date.
func (p *Product) AccountingMonth() string {
	if p.ListedDate != nil && !p.ListedDate.IsZero() {
		return p.ListedDate.Format("2006-01")
	}
	return p.AddedDate.Format("2006-01")
}
