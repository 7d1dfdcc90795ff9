// internal/domain/cart/service.go
package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/analytics"
	"github.com/your-org/storefront-backend/internal/pkg/clock"
	"github.com/your-org/storefront-backend/internal/pkg/validation"
)

// InventoryChecker answers whether qty units of a product are available.
// Implementations apply their own failure policy and never return errors.
type InventoryChecker interface {
	HasStock(ctx context.Context, productID string, qty int) bool
}

// EventTracker receives cart analytics events without blocking
type EventTracker interface {
	Track(event analytics.Event)
}

// Service handles cart business logic
type Service struct {
	store     Store
	inventory InventoryChecker
	events    EventTracker
	clock     clock.Clock
	log       logrus.FieldLogger
	scanCount int64
}

// NewService creates a new cart service
func NewService(store Store, inventory InventoryChecker, events EventTracker, clk clock.Clock, log logrus.FieldLogger, cfg *config.Config) *Service {
	return &Service{
		store:     store,
		inventory: inventory,
		events:    events,
		clock:     clk,
		log:       log,
		scanCount: cfg.Cart.ScanCount,
	}
}

// AddItemRequest represents an add to cart request
type AddItemRequest struct {
	UserID      string          `json:"userId" binding:"required"`
	ProductID   string          `json:"productId" binding:"required"`
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"gt=0"`
	Quantity    int             `json:"quantity" binding:"min=1,max=99"`
	ImageURL    string          `json:"imageUrl,omitempty" binding:"omitempty,url"`
	MaxQuantity *int            `json:"maxQuantity,omitempty" binding:"omitempty,min=1"`
	ExpiresAt   *int64          `json:"expiresAt,omitempty"`
	Version     *int64          `json:"version" binding:"required,min=0"`
}

// UpdateQuantityRequest represents a change of quantity for one line
type UpdateQuantityRequest struct {
	UserID   string `json:"userId" binding:"required"`
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity" binding:"min=1,max=99"`
	Version  *int64 `json:"version" binding:"required,min=0"`
}

// RemoveItemRequest represents removal of one line
type RemoveItemRequest struct {
	UserID  string `json:"userId" binding:"required"`
	ItemID  string `json:"itemId" binding:"required"`
	Version *int64 `json:"version" binding:"required,min=0"`
}

// validate runs the binding rules again for callers that bypass HTTP binding
func validate(req interface{}) error {
	err := validation.Struct(req)
	if err == nil {
		return nil
	}
	if fields, ok := validation.Fields(err); ok {
		return &ValidationError{Fields: fields}
	}
	return fmt.Errorf("%w: %v", ErrValidation, err)
}

// AddItem adds a product to the user's cart, merging into an existing line
// for the same product
func (s *Service) AddItem(ctx context.Context, req AddItemRequest) (*ItemResult, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	if !s.inventory.HasStock(ctx, req.ProductID, req.Quantity) {
		return nil, ErrInsufficientInventory
	}

	now := s.clock.Now()
	doc, err := s.load(ctx, req.UserID, now)
	if err != nil {
		return nil, err
	}

	var item LineItem
	if idx := doc.indexOfProduct(req.ProductID); idx >= 0 {
		existing := doc.Items[idx]
		total := existing.Quantity + req.Quantity

		maxQty := req.MaxQuantity
		if maxQty == nil {
			maxQty = existing.MaxQuantity
		}
		if maxQty != nil && total > *maxQty {
			return nil, ErrExceedsMaxQuantity
		}
		if !s.inventory.HasStock(ctx, req.ProductID, total) {
			return nil, ErrInsufficientInventory
		}

		item = req.lineItem(existing.ID, total)
		item.MaxQuantity = maxQty
		doc.Items[idx] = item
	} else {
		item = req.lineItem("item_"+uuid.NewString(), req.Quantity)
		doc.Items = append(doc.Items, item)
	}

	saved, err := s.store.Write(ctx, req.UserID, doc, *req.Version)
	if err != nil {
		return nil, err
	}

	s.track(req.UserID, analytics.ActionAdd, item, now)

	return &ItemResult{Item: item, Version: saved.Version}, nil
}

func (r *AddItemRequest) lineItem(id string, qty int) LineItem {
	return LineItem{
		ID:          id,
		ProductID:   r.ProductID,
		Name:        r.Name,
		Price:       r.Price,
		Quantity:    qty,
		ImageURL:    r.ImageURL,
		MaxQuantity: r.MaxQuantity,
		ExpiresAt:   r.ExpiresAt,
	}
}

// UpdateQuantity sets the quantity of an existing line
func (s *Service) UpdateQuantity(ctx context.Context, req UpdateQuantityRequest) (*ItemResult, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	doc, err := s.loadExisting(ctx, req.UserID, now)
	if err != nil {
		return nil, err
	}

	idx := doc.indexOfItem(req.ItemID)
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	item := doc.Items[idx]
	if item.MaxQuantity != nil && req.Quantity > *item.MaxQuantity {
		return nil, ErrExceedsMaxQuantity
	}
	if !s.inventory.HasStock(ctx, item.ProductID, req.Quantity) {
		return nil, ErrInsufficientInventory
	}

	item.Quantity = req.Quantity
	doc.Items[idx] = item

	saved, err := s.store.Write(ctx, req.UserID, doc, *req.Version)
	if err != nil {
		return nil, err
	}

	s.track(req.UserID, analytics.ActionUpdate, item, now)

	return &ItemResult{Item: item, Version: saved.Version}, nil
}

// RemoveItem drops a line from the cart. The emptied document is kept so the
// version sequence continues.
func (s *Service) RemoveItem(ctx context.Context, req RemoveItemRequest) (*RemoveResult, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	doc, err := s.loadExisting(ctx, req.UserID, now)
	if err != nil {
		return nil, err
	}

	idx := doc.indexOfItem(req.ItemID)
	if idx < 0 {
		return nil, ErrItemNotFound
	}

	removed := doc.Items[idx]
	doc.Items = append(doc.Items[:idx], doc.Items[idx+1:]...)

	saved, err := s.store.Write(ctx, req.UserID, doc, *req.Version)
	if err != nil {
		return nil, err
	}

	s.track(req.UserID, analytics.ActionRemove, removed, now)

	return &RemoveResult{ItemID: req.ItemID, Version: saved.Version}, nil
}

// GetCart returns the user's cart without expired lines. Pruning is
// persisted on a best-effort basis.
func (s *Service) GetCart(ctx context.Context, userID string) (*View, error) {
	doc, err := s.store.Read(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return &View{Items: []LineItem{}}, nil
	}
	if err != nil {
		return nil, err
	}

	pruned, dropped := doc.withoutExpired(s.clock.Now())
	if dropped > 0 {
		saved, err := s.store.Write(ctx, userID, pruned, doc.Version)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"user_id": userID,
				"dropped": dropped,
			}).Warn("Failed to persist pruned cart")
		} else {
			pruned = saved
		}
	}

	updatedAt := pruned.UpdatedAt
	return &View{
		Items:     pruned.Items,
		Version:   pruned.Version,
		UpdatedAt: &updatedAt,
	}, nil
}

// Cleanup sweeps every stored cart, deleting those left without valid items
// and rewriting those that lost some. It returns the number of carts changed.
// Keys are collected before any cart is touched so deletions cannot shift
// the scan cursor past carts not yet visited.
func (s *Service) Cleanup(ctx context.Context) (int, error) {
	now := s.clock.Now()

	userIDs, err := s.collectUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	cleaned := 0
	for _, userID := range userIDs {
		changed, err := s.sweep(ctx, userID, now)
		if err != nil {
			if ctx.Err() != nil {
				return cleaned, ctx.Err()
			}
			s.log.WithError(err).WithField("user_id", userID).Warn("Skipping cart during cleanup")
			continue
		}
		if changed {
			cleaned++
		}
	}

	s.log.WithFields(logrus.Fields{
		"scanned": len(userIDs),
		"cleaned": cleaned,
	}).Info("Cart cleanup finished")

	return cleaned, nil
}

// collectUserIDs pages through every cart key. SCAN may return a key more
// than once.
func (s *Service) collectUserIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var userIDs []string

	var cursor uint64
	for {
		page, next, err := s.store.ScanUserIDs(ctx, cursor, s.scanCount)
		if err != nil {
			return nil, err
		}

		for _, userID := range page {
			if _, ok := seen[userID]; ok {
				continue
			}
			seen[userID] = struct{}{}
			userIDs = append(userIDs, userID)
		}

		cursor = next
		if cursor == 0 {
			return userIDs, nil
		}
	}
}

func (s *Service) sweep(ctx context.Context, userID string, now time.Time) (bool, error) {
	doc, err := s.store.Read(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	pruned, dropped := doc.withoutExpired(now)
	switch {
	case len(pruned.Items) == 0:
		err = s.store.Delete(ctx, userID, doc.Version)
	case dropped > 0:
		err = s.store.Replace(ctx, userID, pruned)
	default:
		return false, nil
	}

	if err != nil {
		return false, err
	}
	return true, nil
}

// load reads the cart for a mutation, treating an absent cart as empty.
// Expired lines are dropped so they cannot be merged into or updated.
func (s *Service) load(ctx context.Context, userID string, now time.Time) (*Document, error) {
	doc, err := s.store.Read(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return newDocument(), nil
	}
	if err != nil {
		return nil, err
	}

	pruned, _ := doc.withoutExpired(now)
	return pruned, nil
}

func (s *Service) loadExisting(ctx context.Context, userID string, now time.Time) (*Document, error) {
	doc, err := s.store.Read(ctx, userID)
	if err != nil {
		return nil, err
	}

	pruned, _ := doc.withoutExpired(now)
	return pruned, nil
}

func (s *Service) track(userID string, action analytics.Action, item LineItem, now time.Time) {
	if s.events == nil {
		return
	}

	qty := item.Quantity
	value := item.Subtotal()
	s.events.Track(analytics.Event{
		CartID:    userID,
		UserID:    userID,
		Action:    action,
		ProductID: item.ProductID,
		Quantity:  &qty,
		Value:     &value,
		Timestamp: now.UnixMilli(),
		SessionID: "server",
	})
}
