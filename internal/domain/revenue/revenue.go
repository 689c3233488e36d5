// Package revenue holds the revenue-event entity: one sale (or other inflow)
// with its cost components and derived net profit.
package revenue

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mateus-bonette00/qota-store/internal/domain/money"
)

// Common errors
var (
	ErrInvalidCurrency = errors.New("currency must be one of USD, BRL, EUR")
	ErrZeroDate        = errors.New("date is required")
	ErrNonPositiveQty  = errors.New("quantity must be positive")
)

// Event is one recorded inflow. Events created by the marketplace sync carry
// the dedup key (ASIN, SKU, day); user-entered events may leave those blank.
type Event struct {
	ID          int64           `json:"id"`
	Date        time.Time       `json:"date"`
	Origin      string          `json:"origin"` // e.g. "FBA", "manual"
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"` // native amount
	Currency    money.Currency  `json:"currency"`
	Shadow      money.Shadow    `json:"shadow"`
	ProductID   *int64          `json:"product_id,omitempty"`
	SKU         string          `json:"sku"`
	ASIN        string          `json:"asin"`
	Qty         int             `json:"qty"`

	// Profit components, all in the event's native currency
	Gross          decimal.Decimal `json:"gross"`
	CostOfGoods    decimal.Decimal `json:"cost_of_goods"`
	MarketplaceFee decimal.Decimal `json:"marketplace_fee"`
	Ads            decimal.Decimal `json:"ads"`
	Shipping       decimal.Decimal `json:"shipping"`
	Discounts      decimal.Decimal `json:"discounts"`
	NetProfit      decimal.Decimal `json:"net_profit"`

	CreatedAt time.Time `json:"created_at"`
}

// RecomputeNetProfit re-derives the net profit from its components. Called
// on every create and on any update that touches a contributing field.
func (e *Event) RecomputeNetProfit() {
	e.NetProfit = e.Gross.
		Sub(e.CostOfGoods).
		Sub(e.MarketplaceFee).
		Sub(e.Ads).
		Sub(e.Shipping).
		Sub(e.Discounts)
}

// Validate checks field constraints before persistence.
func (e *Event) Validate() error {
	if !e.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	if e.Qty <= 0 {
		return ErrNonPositiveQty
	}
	return nil
}

// DedupKey identifies a marketplace order line at day granularity. Two line
// items with the same key are the same sale as far as the ledger is
// concerned, regardless of how often the feed re-delivers them.
type DedupKey struct {
	ASIN string
	SKU  string
	Day  time.Time // truncated to day, UTC
}

// NewDedupKey builds a key, truncating the timestamp to day granularity.
func NewDedupKey(asin, sku string, t time.Time) DedupKey {
	return DedupKey{
		ASIN: asin,
		SKU:  sku,
		Day:  time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
	}
}

func (k DedupKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.ASIN, k.SKU, k.Day.Format("2006-01-02"))
}
