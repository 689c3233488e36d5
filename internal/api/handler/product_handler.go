package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/mateus-bonette00/qota-store/internal/domain/product"
)

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	logger   *slog.Logger
	products product.Repository
}

// NewProductHandler creates a new product handler
func NewProductHandler(logger *slog.Logger, products product.Repository) *ProductHandler {
	return &ProductHandler{
		logger:   logger,
		products: products,
	}
}

// List returns products filtered by status, category, sku, asin and supplier
func (h *ProductHandler) List(c *gin.Context) {
	filter := product.Filter{
		Category: c.Query("category"),
		SKU:      c.Query("sku"),
		ASIN:     c.Query("asin"),
		Supplier: c.Query("supplier"),
	}
	if raw := c.Query("status"); raw != "" {
		status := product.Status(raw)
		if !status.Valid() {
			RespondBadRequest(c, "Invalid status: "+raw)
			return
		}
		filter.Status = status
	}

	list, err := h.products.List(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list products", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, list)
}

// GetByID retrieves a product by its ID, returning 404 if not found
func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	p, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		var notFound product.ErrProductNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Product not found")
			return
		}
		h.logger.Error("Failed to get product", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, p)
}

// Create registers a new sourced product
func (h *ProductHandler) Create(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := buildProduct(&req, 0)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.products.Create(c.Request.Context(), p); err != nil {
		h.logger.Error("Failed to create product", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, p)
}

// Update rewrites a product row
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := buildProduct(&req, id)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.products.Update(c.Request.Context(), p); err != nil {
		var notFound product.ErrProductNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Product not found")
			return
		}
		h.logger.Error("Failed to update product", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, p)
}

// UpdateStatus moves a product to another pipeline stage
func (h *ProductHandler) UpdateStatus(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	status := product.Status(req.Status)
	if !status.Valid() {
		RespondBadRequest(c, "Invalid status: "+req.Status)
		return
	}

	p, err := h.products.UpdateStatus(c.Request.Context(), id, status)
	if err != nil {
		var notFound product.ErrProductNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Product not found")
			return
		}
		h.logger.Error("Failed to update product status", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, p)
}

// Delete removes a product, returning 404 if it does not exist
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	deleted, err := h.products.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to delete product", "id", id, "error", err)
		RespondInternalError(c)
		return
	}
	if !deleted {
		RespondNotFound(c, "Product not found")
		return
	}

	RespondNoContent(c)
}

func buildProduct(req *ProductRequest, id int64) (*product.Product, error) {
	added, err := parseDate(req.AddedDate)
	if err != nil {
		return nil, err
	}
	listed, err := parseOptionalDate(req.ListedDate)
	if err != nil {
		return nil, err
	}
	currency, err := parseCurrency(req.PurchaseCurrency)
	if err != nil {
		return nil, err
	}

	p := &product.Product{
		ID:               id,
		Name:             req.Name,
		SKU:              req.SKU,
		UPC:              req.UPC,
		ASIN:             req.ASIN,
		Status:           product.Status(req.Status),
		StockQty:         req.StockQty,
		OriginalQty:      req.OriginalQty,
		Category:         req.Category,
		SupplierName:     req.SupplierName,
		BaseCost:         req.BaseCost,
		Freight:          req.Freight,
		Tax:              req.Tax,
		Prep:             req.Prep,
		PurchaseCurrency: currency,
		SellPrice:        req.SellPrice,
		MarketplaceFee:   req.MarketplaceFee,
		AddedDate:        added,
		ListedDate:       listed,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
