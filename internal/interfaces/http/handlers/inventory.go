// internal/interfaces/http/handlers/inventory.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
)

// InventoryHandler handles stock endpoints
type InventoryHandler struct {
	inventoryService *inventory.Service
	log              logrus.FieldLogger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(inventoryService *inventory.Service, log logrus.FieldLogger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		log:              log,
	}
}

// GetStock handles GET /inventory/stock/:id
func (h *InventoryHandler) GetStock(c *gin.Context) {
	productID := c.Param("id")

	stock, err := h.inventoryService.Stock(c.Request.Context(), productID)
	if err != nil {
		h.log.WithError(err).WithField("product_id", productID).Warn("Stock lookup failed")
		respondError(c, http.StatusServiceUnavailable, "Inventory temporarily unavailable")
		return
	}

	c.JSON(http.StatusOK, inventory.StockLevel{ProductID: productID, Stock: stock})
}

// SetStock handles PUT /admin/inventory/stock/:id
func (h *InventoryHandler) SetStock(c *gin.Context) {
	var req inventory.SetStockRequest
	if !bindJSON(c, &req) {
		return
	}

	level, err := h.inventoryService.SetStock(c.Request.Context(), c.Param("id"), *req.Stock)
	switch {
	case errors.Is(err, inventory.ErrInvalidStock):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, inventory.ErrProductNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case err != nil:
		h.log.WithError(err).WithField("product_id", c.Param("id")).Error("Failed to set stock")
		respondError(c, http.StatusInternalServerError, "Failed to update stock")
	default:
		c.JSON(http.StatusOK, level)
	}
}
