// Package expense holds the operating-expense ledger entity.
package expense

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mateus-bonette00/qota-store/internal/domain/money"
)

// Common errors
var (
	ErrEmptyCategory   = errors.New("category cannot be empty")
	ErrInvalidCurrency = errors.New("currency must be one of USD, BRL, EUR")
	ErrZeroDate        = errors.New("date is required")
)

// Expense is a single outflow entered by the user: date, category and a
// monetary value in its native currency plus write-time shadow conversions.
type Expense struct {
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
func (e *Expense) Validate() error {
	if e.Category == "" {
		return ErrEmptyCategory
	}
	if !e.Currency.Valid() {
		return ErrInvalidCurrency
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}
