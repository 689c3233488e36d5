// Package investment holds capital contributions into the operation. The
// shape mirrors expenses; investments count as outflow in the aggregates.
package investment

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mateus-bonette00/qota-store/internal/domain/money"
)

var (
	ErrInvalidCurrency = errors.New("currency must be one of USD, BRL, EUR")
	ErrZeroDate        = errors.New("date is required")
)

// Investment is a capital contribution: money put into the operation from
// outside, tracked separately from day-to-day expenses.
type Investment struct {
	ID          int64           `json:"id"`
	Date        time.Time       `json:"date"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    money.Currency  `json:"currency"`
	Shadow      money.Shadow    `json:"shadow"`
	Method      string          `json:"method"`
	Account     string          `json:"account"`
	Payer       string          `json:"payer"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Validate checks field constraints before persistence.
func (i *Investment) Validate() error {
	if !i.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if i.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}
