package fx

import (
	"github.com/shopspring/decimal"

	"github.com/mateus-bonette00/qota-store/internal/domain/fxrate"
	"github.com/mateus-bonette00/qota-store/internal/domain/money"
)

// Convert translates an amount between currencies using the snapshot's
// rates. Same-currency conversion is the identity, untouched by rate noise.
// Cross rates go through the base currency in two hops.
func Convert(amount decimal.Decimal, from, to money.Currency, snap *fxrate.Snapshot) decimal.Decimal {
	if from == to {
		return amount
	}

	inBase := amount
	if from != snap.Base {
		inBase = money.SafeDiv(amount, snap.Rate(from))
	}
	if to == snap.Base {
		return inBase
	}
	return inBase.Mul(snap.Rate(to))
}

// Shadows pre-converts an amount into every supported currency, producing
// the shadow triple persisted next to the native value.
func Shadows(amount decimal.Decimal, currency money.Currency, snap *fxrate.Snapshot) money.Shadow {
	var s money.Shadow
	for _, c := range money.Currencies() {
		s.Set(c, Convert(amount, currency, c, snap))
	}
	return s
}
