package handler

import (
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mateus-bonette00/qota-store/internal/metrics"
)

// MetricsHandler handles HTTP requests for the aggregate reporting views
type MetricsHandler struct {
	logger  *slog.Logger
	service *metrics.Service
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(logger *slog.Logger, service *metrics.Service) *MetricsHandler {
	return &MetricsHandler{
		logger:  logger,
		service: service,
	}
}

// Summary returns inflow and outflow totals for one month or all time
func (h *MetricsHandler) Summary(c *gin.Context) {
	summary, err := h.service.MonthlySummary(c.Request.Context(), c.Query("month"))
	if err != nil {
		if errors.Is(err, metrics.ErrInvalidMonth) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to compute monthly summary", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, summary)
}

// Totals returns the all-time inflow and outflow totals
func (h *MetricsHandler) Totals(c *gin.Context) {
	totals, err := h.service.CumulativeTotals(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute cumulative totals", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, totals)
}

// Profit returns the product-linked profit report
func (h *MetricsHandler) Profit(c *gin.Context) {
	report, err := h.service.Profit(c.Request.Context(), c.Query("month"))
	if err != nil {
		if errors.Is(err, metrics.ErrInvalidMonth) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to compute profit report", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, report)
}

// Series returns the month-by-month revenue versus expense table
func (h *MetricsHandler) Series(c *gin.Context) {
	rows, err := h.service.MonthlySeries(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to compute monthly series", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, rows)
}

// Ranking returns the product sales ranking for a month or year scope
func (h *MetricsHandler) Ranking(c *gin.Context) {
	now := time.Now().UTC()

	scope := c.DefaultQuery("scope", "month")
	order := c.DefaultQuery("order", "desc")

	year := now.Year()
	if raw := c.Query("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			RespondBadRequest(c, "Invalid year: "+raw)
			return
		}
		year = parsed
	}

	month := now.Month()
	if raw := c.Query("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			RespondBadRequest(c, "Invalid month: "+raw)
			return
		}
		month = time.Month(parsed)
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			RespondBadRequest(c, "Invalid limit: "+raw)
			return
		}
		limit = parsed
	}

	rows, err := h.service.ProductRanking(c.Request.Context(), scope, order, limit, year, month)
	if err != nil {
		if errors.Is(err, metrics.ErrInvalidScope) || errors.Is(err, metrics.ErrInvalidOrder) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to compute product ranking", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, rows)
}

// Dashboard returns the combined landing-page bundle
func (h *MetricsHandler) Dashboard(c *gin.Context) {
	dash, err := h.service.Dashboard(c.Request.Context(), c.Query("month"))
	if err != nil {
		if errors.Is(err, metrics.ErrInvalidMonth) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to compute dashboard", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, dash)
}
