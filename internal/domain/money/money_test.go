package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		input   string
		want    Currency
		wantErr bool
	}{
		{"USD", USD, false},
		{"brl", BRL, false},
		{" eur ", EUR, false},
		{"GBP", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseCurrency(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %q", tt.input)
			assert.ErrorIs(t, err, ErrUnknownCurrency)
		} else {
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		}
	}
}

func TestShadow_InSet(t *testing.T) {
	var s Shadow
	s.Set(BRL, decimal.RequireFromString("5.20"))
	s.Set(EUR, decimal.RequireFromString("0.92"))
	s.Set(USD, decimal.NewFromInt(1))

	assert.True(t, s.In(BRL).Equal(decimal.RequireFromString("5.20")))
	assert.True(t, s.In(EUR).Equal(decimal.RequireFromString("0.92")))
	assert.True(t, s.In(USD).Equal(decimal.NewFromInt(1)))
	assert.True(t, s.In(Currency("GBP")).IsZero())
}

func TestSafeDiv(t *testing.T) {
	assert.True(t, SafeDiv(decimal.NewFromInt(10), decimal.Zero).IsZero())
	assert.True(t, SafeDiv(decimal.NewFromInt(10), decimal.NewFromInt(4)).Equal(decimal.RequireFromString("2.5")))
}
