// internal/domain/cart/entity.go
package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one product line in a cart. Name, Price and ImageURL are a
// snapshot of the catalog taken when the product was added; they are never
// re-synced with the catalog afterwards.
type LineItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"` // VND, no subunits
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	MaxQuantity *int            `json:"maxQuantity,omitempty"`
	ExpiresAt   *int64          `json:"expiresAt,omitempty"` // unix milliseconds
}

// Expired reports whether the item's own expiry has passed
func (i LineItem) Expired(now time.Time) bool {
	return i.ExpiresAt != nil && *i.ExpiresAt <= now.UnixMilli()
}

// Subtotal returns price * quantity
func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Document is the single per-user cart stored in Redis under cart:<userID>
type Document struct {
	Items     []LineItem `json:"items"`
	Version   int64      `json:"version"`
	UpdatedAt int64      `json:"updatedAt"`           // unix milliseconds
	ExpiresAt *int64     `json:"expiresAt,omitempty"` // unix milliseconds
}

// newDocument returns the implicit empty cart used before the first write
func newDocument() *Document {
	return &Document{Items: []LineItem{}}
}

// clone returns a copy whose Items slice can be mutated independently
func (d *Document) clone() *Document {
	cp := *d
	cp.Items = make([]LineItem, len(d.Items))
	copy(cp.Items, d.Items)
	return &cp
}

// withoutExpired returns a copy holding only unexpired items and the number
// of items dropped
func (d *Document) withoutExpired(now time.Time) (*Document, int) {
	pruned := d.clone()
	pruned.Items = pruned.Items[:0]
	for _, item := range d.Items {
		if !item.Expired(now) {
			pruned.Items = append(pruned.Items, item)
		}
	}
	return pruned, len(d.Items) - len(pruned.Items)
}

func (d *Document) indexOfProduct(productID string) int {
	for i, item := range d.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (d *Document) indexOfItem(itemID string) int {
	for i, item := range d.Items {
		if item.ID == itemID {
			return i
		}
	}
	return -1
}

// View is what GetCart returns to callers
type View struct {
	Items     []LineItem `json:"items"`
	Version   int64      `json:"version"`
	UpdatedAt *int64     `json:"updatedAt,omitempty"`
}

// ItemResult is returned by AddItem and UpdateQuantity
type ItemResult struct {
	Item    LineItem `json:"item"`
	Version int64    `json:"version"`
}

// RemoveResult is returned by RemoveItem
type RemoveResult struct {
	ItemID  string `json:"itemId"`
	Version int64  `json:"version"`
}
