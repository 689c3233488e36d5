// Package rates implements the HTTP client for the external exchange-rate
// source. The source serves one flat table per base currency; there is no
// pagination and no auth.
package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mateus-bonette00/qota-store/internal/config"
	"github.com/mateus-bonette00/qota-store/internal/domain/fxrate"
	"github.com/mateus-bonette00/qota-store/internal/domain/money"
)

// Client fetches the latest rate table over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg *config.RatesConfig) *Client {
	return &Client{
		baseURL: cfg.URL,
		http:    &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchLatest retrieves the rate table for the given base currency.
// Missing currencies in the response are an error: a partial table would
// silently corrupt every shadow conversion downstream.
func (c *Client) FetchLatest(ctx context.Context, base money.Currency) (*fxrate.Snapshot, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, base)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rate source unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rate source returned status %d", resp.StatusCode)
	}

	var raw struct {
		Base  string             `json:"base"`
		Rates map[string]float64 `json:"rates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode rate response: %w", err)
	}

	snap := &fxrate.Snapshot{
		Base:      base,
		Rates:     map[money.Currency]decimal.Decimal{base: decimal.NewFromInt(1)},
		FetchedAt: time.Now().UTC(),
	}

	for _, cur := range money.Currencies() {
		if cur == base {
			continue
		}
		rate, ok := raw.Rates[string(cur)]
		if !ok || rate <= 0 {
			return nil, fmt.Errorf("rate source response missing usable rate for %s", cur)
		}
		snap.Rates[cur] = decimal.NewFromFloat(rate)
	}

	return snap, nil
}
