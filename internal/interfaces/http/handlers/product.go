// internal/interfaces/http/handlers/product.go
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/domain/product"
)

// ProductCatalog is the product service as seen by the handlers
type ProductCatalog interface {
	List(ctx context.Context, req product.ListRequest) (*product.ListResponse, error)
	GetBySlug(ctx context.Context, slug string) (*product.Summary, error)
	Create(ctx context.Context, req product.CreateRequest) (*product.Product, error)
}

// ProductHandler handles product endpoints
type ProductHandler struct {
	catalog ProductCatalog
	log     logrus.FieldLogger
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog ProductCatalog, log logrus.FieldLogger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		log:     log,
	}
}

// GetProducts handles GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	var req product.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid query parameters",
			"details": err.Error(),
		})
		return
	}

	result, err := h.catalog.List(c.Request.Context(), req)
	if err != nil {
		h.log.WithError(err).Error("Failed to list products")
		respondError(c, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}

	respondSuccess(c, http.StatusOK, result.Products, result.Pagination)
}

// GetProductBySlug handles GET /products/:slug
func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	p, err := h.catalog.GetBySlug(c.Request.Context(), c.Param("slug"))
	if errors.Is(err, product.ErrProductNotFound) {
		respondError(c, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("slug", c.Param("slug")).Error("Failed to retrieve product")
		respondError(c, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}

	respondSuccess(c, http.StatusOK, p, nil)
}

// CreateProduct handles POST /admin/products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req product.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.catalog.Create(c.Request.Context(), req)
	if errors.Is(err, product.ErrInvalidProduct) {
		respondInvalid(c, err.Error())
		return
	}
	if err != nil {
		h.log.WithError(err).WithField("name", req.Name).Error("Failed to create product")
		respondError(c, http.StatusInternalServerError, "Failed to create product")
		return
	}

	h.log.WithFields(logrus.Fields{
		"product_id": p.ID,
		"slug":       p.Slug,
	}).Info("Product created")

	respondSuccess(c, http.StatusCreated, p, nil)
}
