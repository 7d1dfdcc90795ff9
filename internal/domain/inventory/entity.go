// internal/domain/inventory/entity.go
package inventory

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrInvalidStock    = errors.New("stock cannot be negative")
)

// StockSource is the authoritative inventory store behind the oracle cache
type StockSource interface {
	Stock(ctx context.Context, productID string) (int, error)
	SetStock(ctx context.Context, productID string, stock int) error
}

// StockLevel is returned by the stock endpoints
type StockLevel struct {
	ProductID string `json:"productId"`
	Stock     int    `json:"stock"`
}

// SetStockRequest represents an admin stock adjustment
type SetStockRequest struct {
	Stock *int `json:"stock" binding:"required,min=0"`
}
