package handler

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mateus-bonette00/qota-store/internal/domain/revenue"
	"github.com/mateus-bonette00/qota-store/internal/fx"
	"github.com/mateus-bonette00/qota-store/internal/metrics"
)

// RevenueHandler handles HTTP requests for revenue event operations
type RevenueHandler struct {
	logger   *slog.Logger
	revenues revenue.Repository
	rates    RateSource
}

// NewRevenueHandler creates a new revenue handler
func NewRevenueHandler(logger *slog.Logger, revenues revenue.Repository, rates RateSource) *RevenueHandler {
	return &RevenueHandler{
		logger:   logger,
		revenues: revenues,
		rates:    rates,
	}
}

// List returns revenue events filtered by month, origin, product, sku and range
func (h *RevenueHandler) List(c *gin.Context) {
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

	filter := revenue.Filter{
		Month:  month,
		Origin: c.Query("origin"),
		SKU:    c.Query("sku"),
		From:   from,
		To:     to,
	}
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			RespondBadRequest(c, "Invalid product_id: "+raw)
			return
		}
		filter.ProductID = &id
	}

	list, err := h.revenues.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list revenue events", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, list)
}

// GetByID retrieves a revenue event by its ID, returning 404 if not found
func (h *RevenueHandler) GetByID(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	e, err := h.revenues.GetByID(c.Request.Context(), id)
	if err != nil {
		var notFound revenue.ErrEventNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Revenue event not found")
			return
		}
		h.logger.Error("Failed to get revenue event", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, e)
}

// Create records a manually entered revenue event
func (h *RevenueHandler) Create(c *gin.Context) {
	var req RevenueEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	e, err := h.buildEvent(c, &req, 0)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.revenues.Create(c.Request.Context(), e); err != nil {
		h.logger.Error("Failed to create revenue event", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, e)
}

// Update rewrites a revenue event, recomputing shadows and net profit
func (h *RevenueHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	var req RevenueEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	e, err := h.buildEvent(c, &req, id)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.revenues.Update(c.Request.Context(), e); err != nil {
		var notFound revenue.ErrEventNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Revenue event not found")
			return
		}
		h.logger.Error("Failed to update revenue event", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, e)
}

// Delete removes a revenue event, returning 404 if it does not exist
func (h *RevenueHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	deleted, err := h.revenues.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to delete revenue event", "id", id, "error", err)
		RespondInternalError(c)
		return
	}
	if !deleted {
		RespondNotFound(c, "Revenue event not found")
		return
	}

	RespondNoContent(c)
}

func (h *RevenueHandler) buildEvent(c *gin.Context, req *RevenueEventRequest, id int64) (*revenue.Event, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	currency, err := parseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	origin := req.Origin
	if origin == "" {
		origin = "manual"
	}

	snap, _ := h.rates.Current(c.Request.Context())

	e := &revenue.Event{
		ID:             id,
		Date:           date,
		Origin:         origin,
		Description:    req.Description,
		Amount:         req.Amount,
		Currency:       currency,
		Shadow:         fx.Shadows(req.Amount, currency, snap),
		ProductID:      req.ProductID,
		SKU:            req.SKU,
		ASIN:           req.ASIN,
		Qty:            req.Qty,
		Gross:          req.Amount,
		CostOfGoods:    req.CostOfGoods,
		MarketplaceFee: req.MarketplaceFee,
		Ads:            req.Ads,
		Shipping:       req.Shipping,
		Discounts:      req.Discounts,
	}
	e.RecomputeNetProfit()
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}
