package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// CurrencyHandler handles HTTP requests for exchange rate lookups
type CurrencyHandler struct {
	logger *slog.Logger
	rates  RateSource
}

// NewCurrencyHandler creates a new currency handler
func NewCurrencyHandler(logger *slog.Logger, rates RateSource) *CurrencyHandler {
	return &CurrencyHandler{
		logger: logger,
		rates:  rates,
	}
}

// Rates returns the current exchange-rate table and where it came from
func (h *CurrencyHandler) Rates(c *gin.Context) {
	snap, provenance := h.rates.Current(c.Request.Context())

	RespondOK(c, gin.H{
		"base":       snap.Base,
		"rates":      snap.Rates,
		"fetched_at": snap.FetchedAt,
		"provenance": provenance,
	})
}
