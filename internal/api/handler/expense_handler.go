package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/mateus-bonette00/qota-store/internal/domain/expense"
	"github.com/mateus-bonette00/qota-store/internal/fx"
	"github.com/mateus-bonette00/qota-store/internal/metrics"
)

// ExpenseHandler handles HTTP requests for expense operations
type ExpenseHandler struct {
	logger   *slog.Logger
	expenses expense.Repository
	rates    RateSource
}

// NewExpenseHandler creates a new expense handler
func NewExpenseHandler(logger *slog.Logger, expenses expense.Repository, rates RateSource) *ExpenseHandler {
	return &ExpenseHandler{
		logger:   logger,
		expenses: expenses,
		rates:    rates,
	}
}

// List returns expenses filtered by month, date range and category
func (h *ExpenseHandler) List(c *gin.Context) {
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

	filter := expense.Filter{
		Month:    month,
		From:     from,
		To:       to,
		Category: c.Query("category"),
	}

	list, err := h.expenses.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list expenses", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, list)
}

// GetByID retrieves an expense by its ID, returning 404 if not found
func (h *ExpenseHandler) GetByID(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	e, err := h.expenses.GetByID(c.Request.Context(), id)
	if err != nil {
		var notFound expense.ErrExpenseNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Expense not found")
			return
		}
		h.logger.Error("Failed to get expense", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, e)
}

// Create records a new expense, computing shadow conversions at write time
func (h *ExpenseHandler) Create(c *gin.Context) {
	var req LedgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	e, err := h.buildExpense(c, &req, 0)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.expenses.Create(c.Request.Context(), e); err != nil {
		h.logger.Error("Failed to create expense", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, e)
}

// Update rewrites an expense, recomputing shadow conversions
func (h *ExpenseHandler) Update(c *gin.Context) {
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

	e, err := h.buildExpense(c, &req, id)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.expenses.Update(c.Request.Context(), e); err != nil {
		var notFound expense.ErrExpenseNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Expense not found")
			return
		}
		h.logger.Error("Failed to update expense", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, e)
}

// Delete removes an expense, returning 404 if it does not exist
func (h *ExpenseHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	deleted, err := h.expenses.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to delete expense", "id", id, "error", err)
		RespondInternalError(c)
		return
	}
	if !deleted {
		RespondNotFound(c, "Expense not found")
		return
	}

	RespondNoContent(c)
}

func (h *ExpenseHandler) buildExpense(c *gin.Context, req *LedgerEntryRequest, id int64) (*expense.Expense, error) {
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}
	currency, err := parseCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	snap, _ := h.rates.Current(c.Request.Context())

	e := &expense.Expense{
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
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}
