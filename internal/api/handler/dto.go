package handler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/mateus-bonette00/qota-store/internal/domain/fxrate"
	"github.com/mateus-bonette00/qota-store/internal/domain/money"
)

const dateLayout = "2006-01-02"

// RateSource supplies the current exchange-rate table for write-time shadow
// conversion. Satisfied by *fx.Provider.
type RateSource interface {
	Current(ctx context.Context) (*fxrate.Snapshot, fxrate.Provenance)
}

// LedgerEntryRequest is the write payload shared by expenses and investments.
type LedgerEntryRequest struct {
	Date        string          `json:"date" binding:"required"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" binding:"required"`
	Method      string          `json:"method"`
	Account     string          `json:"account"`
	Payer       string          `json:"payer"`
}

// ProductRequest is the write payload for products.
type ProductRequest struct {
	Name             string          `json:"name" binding:"required"`
	SKU              string          `json:"sku"`
	UPC              string          `json:"upc"`
	ASIN             string          `json:"asin"`
	Status           string          `json:"status" binding:"required"`
	StockQty         int             `json:"stock_qty"`
	OriginalQty      int             `json:"original_qty"`
	Category         string          `json:"category"`
	SupplierName     string          `json:"supplier_name"`
	BaseCost         decimal.Decimal `json:"base_cost"`
	Freight          decimal.Decimal `json:"freight"`
	Tax              decimal.Decimal `json:"tax"`
	Prep             decimal.Decimal `json:"prep"`
	PurchaseCurrency string          `json:"purchase_currency" binding:"required"`
	SellPrice        decimal.Decimal `json:"sell_price"`
	MarketplaceFee   decimal.Decimal `json:"marketplace_fee"`
	AddedDate        string          `json:"added_date" binding:"required"`
	ListedDate       *string         `json:"listed_date,omitempty"`
}

// UpdateStatusRequest moves a product to another pipeline stage.
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// RevenueEventRequest is the write payload for manually entered revenue.
type RevenueEventRequest struct {
	Date        string          `json:"date" binding:"required"`
	Origin      string          `json:"origin"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency" binding:"required"`
	ProductID   *int64          `json:"product_id,omitempty"`
	SKU         string          `json:"sku"`
	ASIN        string          `json:"asin"`
	Qty         int             `json:"qty"`

	CostOfGoods    decimal.Decimal `json:"cost_of_goods"`
	MarketplaceFee decimal.Decimal `json:"marketplace_fee"`
	Ads            decimal.Decimal `json:"ads"`
	Shipping       decimal.Decimal `json:"shipping"`
	Discounts      decimal.Decimal `json:"discounts"`
}

// parseDate parses a YYYY-MM-DD payload field.
func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// parseOptionalDate parses a nullable YYYY-MM-DD field into a *time.Time.
func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseCurrency validates a currency payload field.
func parseCurrency(s string) (money.Currency, error) {
	return money.ParseCurrency(s)
}

// pathID extracts the numeric :id path parameter.
func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", c.Param("id"))
	}
	return id, nil
}

// queryDate reads an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", key, raw)
	}
	return &t, nil
}
