// internal/domain/product/entity.go
package product

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Availability represents the sale state of a product
type Availability string

const (
	AvailabilityInStock      Availability = "in-stock"
	AvailabilityOutOfStock   Availability = "out-of-stock"
	AvailabilityPreOrder     Availability = "pre-order"
	AvailabilityDiscontinued Availability = "discontinued"
)

// Valid reports whether a is a known availability
func (a Availability) Valid() bool {
	switch a {
	case AvailabilityInStock, AvailabilityOutOfStock, AvailabilityPreOrder, AvailabilityDiscontinued:
		return true
	}
	return false
}

// ForStock derives availability from an inventory count. Pre-order and
// discontinued products keep their state.
func (a Availability) ForStock(stock int) Availability {
	if a == AvailabilityPreOrder || a == AvailabilityDiscontinued {
		return a
	}
	if stock > 0 {
		return AvailabilityInStock
	}
	return AvailabilityOutOfStock
}

// Product represents a catalog product. Prices are whole VND.
type Product struct {
	ID            uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name          string              `gorm:"not null;size:255" json:"name"`
	Slug          string              `gorm:"uniqueIndex;not null;size:255" json:"slug"`
	Description   string              `gorm:"type:text" json:"description"`
	Category      string              `gorm:"not null;size:100;index" json:"category"`
	Price         decimal.Decimal     `gorm:"type:numeric(12,0);not null" json:"price"`
	OriginalPrice decimal.NullDecimal `gorm:"type:numeric(12,0)" json:"originalPrice,omitempty"`
	ImageURL      string              `gorm:"size:500" json:"imageUrl"`
	Rating        decimal.Decimal     `gorm:"type:numeric(3,2);default:0" json:"rating"`
	ReviewCount   int                 `gorm:"default:0" json:"reviewCount"`
	Availability  Availability        `gorm:"size:20;not null;default:'in-stock'" json:"availability"`
	Inventory     int                 `gorm:"not null;default:0;check:inventory >= 0" json:"inventory"`
	Badges        string              `gorm:"size:255" json:"-"` // Comma-separated badges
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt      `gorm:"index" json:"-"`
}

// TableName overrides
func (Product) TableName() string { return "products" }

// BadgeList splits the stored badges
func (p *Product) BadgeList() []string {
	if p.Badges == "" {
		return []string{}
	}
	parts := strings.Split(p.Badges, ",")
	out := make([]string, 0, len(parts))
	for _, b := range parts {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Discount returns the percentage off the original price, or zero
func (p *Product) Discount() int {
	if !p.OriginalPrice.Valid || !p.OriginalPrice.Decimal.GreaterThan(p.Price) {
		return 0
	}
	off := p.OriginalPrice.Decimal.Sub(p.Price).Div(p.OriginalPrice.Decimal).Mul(decimal.NewFromInt(100))
	return int(off.Round(0).IntPart())
}
