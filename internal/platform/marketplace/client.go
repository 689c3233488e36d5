package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mateus-bonette00/qota-store/internal/config"
	"github.com/mateus-bonette00/qota-store/internal/domain/money"
)

// UpstreamError wraps failures talking to the marketplace so callers can
// distinguish them from local faults.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("marketplace %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Balance is the seller account balance as reported upstream. Pending is
// carried for forward compatibility; the finances feed does not expose it.
type Balance struct {
	Available decimal.Decimal
	Pending   decimal.Decimal
	Currency  money.Currency
}

// Order is a marketplace order header.
type Order struct {
	OrderID      string
	PurchaseDate time.Time
	Status       string
}

// OrderItem is a single line of a marketplace order.
type OrderItem struct {
	SKU       string
	ASIN      string
	Title     string
	Qty       int
	ItemPrice decimal.Decimal
	Currency  money.Currency
}

// InventorySummary is one listed SKU with its sellable quantity.
type InventorySummary struct {
	SKU         string
	ASIN        string
	ProductName string
	Quantity    int
}

// Client talks to the selling-partner HTTP API.
type Client struct {
	endpoint      string
	marketplaceID string
	tokens        TokenSource
	http          *http.Client
}

// NewClient builds a marketplace client from configuration.
func NewClient(cfg *config.MarketplaceConfig, tokens TokenSource) *Client {
	return &Client{
		endpoint:      cfg.Endpoint,
		marketplaceID: cfg.MarketplaceID,
		tokens:        tokens,
		http:          &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	u := c.endpoint + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", op, err)
	}
	req.Header.Set("x-amz-access-token", token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &UpstreamError{Op: op, Err: fmt.Errorf("endpoint returned status %d", resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}

type moneyAmount struct {
	CurrencyCode string `json:"CurrencyCode"`
	Amount       string `json:"Amount"`
}

func (m moneyAmount) decimal() decimal.Decimal {
	d, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// GetAccountBalance sums the charges in the recent financial events feed.
// The result floors at zero; refunds can push the raw sum negative.
func (c *Client) GetAccountBalance(ctx context.Context) (*Balance, error) {
	var body struct {
		Payload struct {
			FinancialEvents struct {
				ShipmentEventList []struct {
					ShipmentItemList []struct {
						ItemChargeList []struct {
							ChargeAmount moneyAmount `json:"ChargeAmount"`
						} `json:"ItemChargeList"`
					} `json:"ShipmentItemList"`
				} `json:"ShipmentEventList"`
			} `json:"FinancialEvents"`
		} `json:"payload"`
	}

	query := url.Values{
		"PostedAfter": {time.Now().AddDate(0, -1, 0).UTC().Format(time.RFC3339)},
	}
	if err := c.get(ctx, "balance", "/finances/v0/financialEvents", query, &body); err != nil {
		return nil, err
	}

	total := decimal.Zero
	currency := money.USD
	for _, ev := range body.Payload.FinancialEvents.ShipmentEventList {
		for _, item := range ev.ShipmentItemList {
			for _, charge := range item.ItemChargeList {
				total = total.Add(charge.ChargeAmount.decimal())
				if cur, err := money.ParseCurrency(charge.ChargeAmount.CurrencyCode); err == nil {
					currency = cur
				}
			}
		}
	}
	if total.IsNegative() {
		total = decimal.Zero
	}

	return &Balance{Available: total, Pending: decimal.Zero, Currency: currency}, nil
}

// GetRecentOrders lists shipped and unshipped orders created in the trailing
// window of days.
func (c *Client) GetRecentOrders(ctx context.Context, days int) ([]Order, error) {
	var body struct {
		Payload struct {
			Orders []struct {
				AmazonOrderID string `json:"AmazonOrderId"`
				PurchaseDate  string `json:"PurchaseDate"`
				OrderStatus   string `json:"OrderStatus"`
			} `json:"Orders"`
		} `json:"payload"`
	}

	query := url.Values{
		"MarketplaceIds": {c.marketplaceID},
		"CreatedAfter":   {time.Now().AddDate(0, 0, -days).UTC().Format(time.RFC3339)},
		"OrderStatuses":  {"Shipped,Unshipped"},
	}
	if err := c.get(ctx, "orders", "/orders/v0/orders", query, &body); err != nil {
		return nil, err
	}

	orders := make([]Order, 0, len(body.Payload.Orders))
	for _, o := range body.Payload.Orders {
		purchased, err := time.Parse(time.RFC3339, o.PurchaseDate)
		if err != nil {
			purchased = time.Now().UTC()
		}
		orders = append(orders, Order{
			OrderID:      o.AmazonOrderID,
			PurchaseDate: purchased,
			Status:       o.OrderStatus,
		})
	}
	return orders, nil
}

// GetOrderItems lists the line items of a single order.
func (c *Client) GetOrderItems(ctx context.Context, orderID string) ([]OrderItem, error) {
	var body struct {
		Payload struct {
			OrderItems []struct {
				SellerSKU       string      `json:"SellerSKU"`
				ASIN            string      `json:"ASIN"`
				Title           string      `json:"Title"`
				QuantityOrdered int         `json:"QuantityOrdered"`
				ItemPrice       moneyAmount `json:"ItemPrice"`
			} `json:"OrderItems"`
		} `json:"payload"`
	}

	path := "/orders/v0/orders/" + url.PathEscape(orderID) + "/orderItems"
	if err := c.get(ctx, "order items", path, nil, &body); err != nil {
		return nil, err
	}

	items := make([]OrderItem, 0, len(body.Payload.OrderItems))
	for _, it := range body.Payload.OrderItems {
		currency := money.USD
		if cur, err := money.ParseCurrency(it.ItemPrice.CurrencyCode); err == nil {
			currency = cur
		}
		items = append(items, OrderItem{
			SKU:       it.SellerSKU,
			ASIN:      it.ASIN,
			Title:     it.Title,
			Qty:       it.QuantityOrdered,
			ItemPrice: it.ItemPrice.decimal(),
			Currency:  currency,
		})
	}
	return items, nil
}

// GetInventorySummaries lists the current sellable inventory.
func (c *Client) GetInventorySummaries(ctx context.Context) ([]InventorySummary, error) {
	var body struct {
		Payload struct {
			InventorySummaries []struct {
				SellerSKU     string `json:"sellerSku"`
				ASIN          string `json:"asin"`
				ProductName   string `json:"productName"`
				TotalQuantity int    `json:"totalQuantity"`
			} `json:"inventorySummaries"`
		} `json:"payload"`
	}

	query := url.Values{
		"marketplaceIds":  {c.marketplaceID},
		"granularityType": {"Marketplace"},
		"granularityId":   {c.marketplaceID},
		"details":         {"true"},
	}
	if err := c.get(ctx, "inventory", "/fba/inventory/v1/summaries", query, &body); err != nil {
		return nil, err
	}

	summaries := make([]InventorySummary, 0, len(body.Payload.InventorySummaries))
	for _, s := range body.Payload.InventorySummaries {
		summaries = append(summaries, InventorySummary{
			SKU:         s.SellerSKU,
			ASIN:        s.ASIN,
			ProductName: s.ProductName,
			Quantity:    s.TotalQuantity,
		})
	}
	return summaries, nil
}
