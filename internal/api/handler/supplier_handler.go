package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/mateus-bonette00/qota-store/internal/domain/supplier"
)

// SupplierRequest is the write payload for suppliers.
type SupplierRequest struct {
	Name  string `json:"name" binding:"required"`
	URL   string `json:"url"`
	Email string `json:"email"`
	Notes string `json:"notes"`
}

// SupplierHandler handles HTTP requests for supplier operations
type SupplierHandler struct {
	logger    *slog.Logger
	suppliers supplier.Repository
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(logger *slog.Logger, suppliers supplier.Repository) *SupplierHandler {
	return &SupplierHandler{
		logger:    logger,
		suppliers: suppliers,
	}
}

// List returns suppliers ordered by name; ?q= searches name, URL and email
func (h *SupplierHandler) List(c *gin.Context) {
	list, err := h.suppliers.List(c.Request.Context(), supplier.Filter{Search: c.Query("q")})
	if err != nil {
		h.logger.Error("Failed to list suppliers", "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, list)
}

// GetByID retrieves a supplier by its ID, returning 404 if not found
func (h *SupplierHandler) GetByID(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	s, err := h.suppliers.GetByID(c.Request.Context(), id)
	if err != nil {
		var notFound supplier.ErrSupplierNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Supplier not found")
			return
		}
		h.logger.Error("Failed to get supplier", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, s)
}

// Create registers a new supplier
func (h *SupplierHandler) Create(c *gin.Context) {
	var req SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	s := buildSupplier(&req, 0)
	if err := s.Validate(); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.suppliers.Create(c.Request.Context(), s); err != nil {
		h.logger.Error("Failed to create supplier", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, s)
}

// Update rewrites a supplier row
func (h *SupplierHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	var req SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	s := buildSupplier(&req, id)
	if err := s.Validate(); err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	if err := h.suppliers.Update(c.Request.Context(), s); err != nil {
		var notFound supplier.ErrSupplierNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Supplier not found")
			return
		}
		h.logger.Error("Failed to update supplier", "id", id, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, s)
}

// Delete removes a supplier, returning 404 if it does not exist
func (h *SupplierHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		RespondBadRequest(c, err.Error())
		return
	}

	deleted, err := h.suppliers.Delete(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to delete supplier", "id", id, "error", err)
		RespondInternalError(c)
		return
	}
	if !deleted {
		RespondNotFound(c, "Supplier not found")
		return
	}

	RespondNoContent(c)
}

func buildSupplier(req *SupplierRequest, id int64) *supplier.Supplier {
	return &supplier.Supplier{
		ID:    id,
		Name:  req.Name,
		URL:   req.URL,
		Email: req.Email,
		Notes: req.Notes,
	}
}
