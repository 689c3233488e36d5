package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/mateus-bonette00/qota-store/internal/domain/investment"
	"github.com/mateus-bonette00/qota-store/internal/fx"
	"github.com/mateus-bonette00/qota-store/internal/metrics"
)

// InvestmentHandler handles HTTP requests for investment operations
type InvestmentHandler struct {
	logger      *slog.Logger
	investments investment.Repository
	rates       RateSource
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(logger *slog.Logger, investments investment.Repository, rates RateSource) *InvestmentHandler {
	return &InvestmentHandler{
		logger:      logger,
		investments: investments,
		rates:       rates,
	}
}

// List returns investments filtered by month and date range
func (h *InvestmentHandler) List(c *gin.Context) {
	month := c.Query("month")
	if err := metrics.ValidateMonth(month); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	from, err := queryDate(c, "from")
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}
	to, err := queryDate(c, "to")
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	list, err := h.investments.List(c.Request.Context(), investment.Filter{Month: month, From: from, To: to})
	if err != nil {
		h.logger.Error("Failed to list investments", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, list)
}

// GetByID retrieves an investment by its ID, returning 404 if not found
func (h *InvestmentHandler) GetByID(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	inv, err := h.investments.GetByID(c.Request.Context(), id)
	if err != nil {
		var notFound investment.ErrInvestmentNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Investment not found")
			return
		}
		h.logger.Error("Failed to get investment", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, inv)
}

// Create records a new investment, computing shadow conversions at write time
func (h *InvestmentHandler) Create(c *gin.Context) {
	var req LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	inv, err := h.buildInvestment(c, &req, 0)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.investments.Create(c.Request.Context(), inv); err != nil {
		h.logger.Error("Failed to create investment", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, inv)
}

// Update rewrites an investment, recomputing shadow conversions
func (h *InvestmentHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	var req LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	inv, err := h.buildInvestment(c, &req, id)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.investments.Update(c.Request.Context(), inv); err != nil {
		var notFound investment.ErrInvestmentNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Investment not found")
			return
		}
		h.logger.Error("Failed to update investment", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, inv)
}

// Delete removes an investment, returning 404 if it does not exist
func (h *InvestmentHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	deleted, err := h.investments.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to delete investment", "id", id, "error", err)
		RespondInternalError(c)
		return
	}
	if !deleted {
		RespondNotFound(c, "Investment not found")
		return
	}

	RespondNoContent(c)
}

func (h *InvestmentHandler) buildInvestment(c *gin.Context, req *LedgerEntryRequest, id int64) (*investment.Investment, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	currency, err := parseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	snap, _ := h.rates.Current(c.Request.Context())

	inv := &investment.Investment{
		ID:          id,
		Date:        date,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
		Currency:    currency,
		Shadow:      fx.Shadows(req.Amount, currency, snap),
		Method:      req.Method,
		Account:     req.Account,
		Payer:       req.Payer,
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}
