// internal/domain/inventory/service.go
package inventory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	rediskeys "github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
	"golang.org/x/sync/singleflight"
)

// Service is the inventory oracle. Stock is read through a short-lived Redis
// cache in front of the StockSource; concurrent misses for the same product
// share one source lookup.
type Service struct {
	client   redis.UniversalClient
	source   StockSource
	log      logrus.FieldLogger
	cacheTTL time.Duration
	timeout  time.Duration
	failOpen bool
	group    singleflight.Group
}

// NewService creates a new inventory oracle
func NewService(client redis.UniversalClient, source StockSource, cfg *config.Config, log logrus.FieldLogger) *Service {
	return &Service{
		client:   client,
		source:   source,
		log:      log,
		cacheTTL: cfg.Inventory.CacheTTL,
		timeout:  cfg.Inventory.Timeout,
		failOpen: cfg.Inventory.FailOpen,
	}
}

// Stock returns the available stock for a product. Unknown products have
// zero stock.
func (s *Service) Stock(ctx context.Context, productID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	key := rediskeys.InventoryKey(productID)

	cached, err := s.client.Get(ctx, key).Int()
	switch {
	case err == nil:
		return cached, nil
	case errors.Is(err, redis.Nil):
	default:
		// A broken cache should not hide the source
		s.log.WithError(err).WithField("product_id", productID).Warn("Inventory cache read failed")
	}

	v, err, _ := s.group.Do(productID, func() (interface{}, error) {
		stock, err := s.source.Stock(ctx, productID)
		if errors.Is(err, ErrProductNotFound) {
			stock, err = 0, nil
		}
		if err != nil {
			return 0, errs.Dependency(err, "read stock")
		}

		if err := s.client.Set(ctx, key, strconv.Itoa(stock), s.cacheTTL).Err(); err != nil {
			s.log.WithError(err).WithField("product_id", productID).Warn("Inventory cache write failed")
		}
		return stock, nil
	})
	if err != nil {
		return 0, err
	}

	return v.(int), nil
}

// HasStock reports whether qty units are available. When the oracle cannot
// answer, the configured failure policy decides.
func (s *Service) HasStock(ctx context.Context, productID string, qty int) bool {
	stock, err := s.Stock(ctx, productID)
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"product_id": productID,
			"quantity":   qty,
			"fail_open":  s.failOpen,
		}).Warn("Inventory check failed")
		return s.failOpen
	}
	return stock >= qty
}

// SetStock updates the authoritative stock and drops the cached value
func (s *Service) SetStock(ctx context.Context, productID string, stock int) (*StockLevel, error) {
	if stock < 0 {
		return nil, ErrInvalidStock
	}

	if err := s.source.SetStock(ctx, productID, stock); err != nil {
		if errors.Is(err, ErrProductNotFound) || errors.Is(err, ErrInvalidStock) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to set stock: %w", err)
	}

	if err := s.client.Del(ctx, rediskeys.InventoryKey(productID)).Err(); err != nil {
		s.log.WithError(err).WithField("product_id", productID).Warn("Inventory cache invalidation failed")
	}

	return &StockLevel{ProductID: productID, Stock: stock}, nil
}
