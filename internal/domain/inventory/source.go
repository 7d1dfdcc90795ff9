// internal/domain/inventory/source.go
package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
	"gorm.io/gorm"
)

// GormStockSource reads and writes stock on the products table
type GormStockSource struct {
	db *gorm.DB
}

// NewGormStockSource creates a stock source backed by PostgreSQL
func NewGormStockSource(db *gorm.DB) *GormStockSource {
	return &GormStockSource{db: db}
}

// Stock returns the inventory count of a product
func (s *GormStockSource) Stock(ctx context.Context, productID string) (int, error) {
	id, err := uuid.Parse(productID)
	if err != nil {
		return 0, ErrProductNotFound
	}

	var p product.Product
	err = s.db.WithContext(ctx).Select("id", "inventory").Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrProductNotFound
	}
	if err != nil {
		return 0, errs.Wrap(err, "failed to read stock")
	}

	return p.Inventory, nil
}

// SetStock overwrites the inventory count and keeps availability in line
// with it
func (s *GormStockSource) SetStock(ctx context.Context, productID string, stock int) error {
	if stock < 0 {
		return ErrInvalidStock
	}
	id, err := uuid.Parse(productID)
	if err != nil {
		return ErrProductNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p product.Product
		err := tx.Select("id", "availability").Where("id = ?", id).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return errs.Wrap(err, "failed to load product")
		}

		result := tx.Model(&product.Product{}).Where("id = ?", id).Updates(map[string]interface{}{
			"inventory":    stock,
			"availability": p.Availability.ForStock(stock),
		})
		if result.Error != nil {
			return errs.Wrap(result.Error, "failed to update stock")
		}
		return nil
	})
}
