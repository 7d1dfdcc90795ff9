// internal/interfaces/http/handlers/cart.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
)

// CartHandler handles cart endpoints
type CartHandler struct {
	cartService *cart.Service
	log         logrus.FieldLogger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *cart.Service, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		log:         log,
	}
}

// GetCart handles GET /cart/:userId
func (h *CartHandler) GetCart(c *gin.Context) {
	userID := c.Param("userId")
	if !h.authorize(c, userID) {
		return
	}

	view, err := h.cartService.GetCart(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// AddItem handles POST /cart/add
func (h *CartHandler) AddItem(c *gin.Context) {
	var req cart.AddItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.authorize(c, req.UserID) {
		return
	}

	result, err := h.cartService.AddItem(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// UpdateItem handles PATCH /cart/update
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req cart.UpdateQuantityRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.authorize(c, req.UserID) {
		return
	}

	result, err := h.cartService.UpdateQuantity(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// RemoveItem handles DELETE /cart/remove
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req cart.RemoveItemRequest
	if !bindJSON(c, &req) {
		return
	}
	if !h.authorize(c, req.UserID) {
		return
	}

	result, err := h.cartService.RemoveItem(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Cleanup handles POST /cart/cleanup
func (h *CartHandler) Cleanup(c *gin.Context) {
	cleaned, err := h.cartService.Cleanup(c.Request.Context())
	if err != nil {
		h.log.WithError(err).WithField("cleaned", cleaned).Error("Cart cleanup failed")
		respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cleanedCarts": cleaned,
	})
}

// authorize checks the session user against the user named in the request
func (h *CartHandler) authorize(c *gin.Context, userID string) bool {
	sessionUser, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return false
	}
	if userID != sessionUser {
		respondError(c, http.StatusForbidden, "Forbidden")
		return false
	}
	return true
}

func (h *CartHandler) fail(c *gin.Context, err error) {
	var verr *cart.ValidationError

	switch {
	case errors.As(err, &verr):
		respondInvalid(c, verr.Fields)
	case errors.Is(err, cart.ErrInsufficientInventory),
		errors.Is(err, cart.ErrExceedsMaxQuantity):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrVersionConflict):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, cart.ErrCartNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	default:
		h.log.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString(middleware.ContextRequestID),
			"path":       c.FullPath(),
		}).Error("Cart operation failed")
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
