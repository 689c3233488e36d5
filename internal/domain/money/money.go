// Package money defines the currency set and monetary value types shared by
// every money-bearing entity. Amounts are decimals, never floats; each
// persisted record carries its native amount plus pre-converted shadow values
// in the other two currencies so reads never need a rate lookup.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Currency is one of the three currencies the ledger supports.
type Currency string

const (
	USD Currency = "USD"
	BRL Currency = "BRL"
	EUR Currency = "EUR"
)

// Base is the currency every cross-rate goes through.
const Base = USD

var ErrUnknownCurrency = errors.New("unknown currency")

// Currencies lists the supported set in a stable order.
func Currencies() []Currency {
	return []Currency{USD, BRL, EUR}
}

// ParseCurrency validates a currency code, accepting any casing.
func ParseCurrency(s string) (Currency, error) {
	switch Currency(strings.ToUpper(strings.TrimSpace(s))) {
	case USD:
		return USD, nil
	case BRL:
		return BRL, nil
	case EUR:
		return EUR, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, s)
}

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	switch c {
	case USD, BRL, EUR:
		return true
	}
	return false
}

// Shadow holds a monetary value pre-converted into every supported currency.
// Shadows are computed once, at write time, from the rate table current at
// that moment. Later rate changes do not rewrite them.
type Shadow struct {
	USD decimal.Decimal `json:"usd"`
	BRL decimal.Decimal `json:"brl"`
	EUR decimal.Decimal `json:"eur"`
}

// In returns the shadow value for the given currency.
func (s Shadow) In(c Currency) decimal.Decimal {
	switch c {
	case USD:
		return s.USD
	case BRL:
		return s.BRL
	case EUR:
		return s.EUR
	}
	return decimal.Zero
}

// Set assigns the shadow value for the given currency.
func (s *Shadow) Set(c Currency, v decimal.Decimal) {
	switch c {
	case USD:
		s.USD = v
	case BRL:
		s.BRL = v
	case EUR:
		s.EUR = v
	}
}

// SafeDiv divides a by b, returning zero when b is zero. Every ratio in the
// aggregator goes through this so missing or zero data degrades to zero
// instead of a panic or an infinity.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}
