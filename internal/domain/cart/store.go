// internal/domain/cart/store.go
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/storefront-backend/internal/config"
	rediskeys "github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/pkg/clock"
	"github.com/your-org/storefront-backend/internal/pkg/errs"
)

// Store persists one cart document per user with optimistic concurrency
type Store interface {
	// Read returns the raw stored document or ErrCartNotFound. No pruning.
	Read(ctx context.Context, userID string) (*Document, error)
	// Write persists doc as version expectedVersion+1 unless a stored
	// document exists with a different version (ErrVersionConflict).
	Write(ctx context.Context, userID string, doc *Document, expectedVersion int64) (*Document, error)
	// Replace overwrites the stored document keeping its version and TTL,
	// provided the stored version still equals doc.Version.
	Replace(ctx context.Context, userID string, doc *Document) error
	// Delete removes the document provided its version equals expectedVersion.
	Delete(ctx context.Context, userID string, expectedVersion int64) error
	// ScanUserIDs pages through users that own a cart document.
	ScanUserIDs(ctx context.Context, cursor uint64, count int64) ([]string, uint64, error)
}

// RedisStore is the Redis implementation of Store. Conditional writes run
// inside WATCH/MULTI/EXEC so a concurrent writer aborts the transaction.
type RedisStore struct {
	client  redis.UniversalClient
	clock   clock.Clock
	ttl     time.Duration
	minTTL  time.Duration
	timeout time.Duration
}

// NewRedisStore creates a new Redis-backed cart store
func NewRedisStore(client redis.UniversalClient, clk clock.Clock, cfg *config.Config) *RedisStore {
	return &RedisStore{
		client:  client,
		clock:   clk,
		ttl:     cfg.Cart.TTL,
		minTTL:  cfg.Cart.MinTTL,
		timeout: cfg.Cart.StoreTimeout,
	}
}

// Read implements Store
func (s *RedisStore) Read(ctx context.Context, userID string) (*Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	return readDocument(ctx, s.client, rediskeys.CartKey(userID))
}

// Write implements Store
func (s *RedisStore) Write(ctx context.Context, userID string, doc *Document, expectedVersion int64) (*Document, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	now := s.clock.Now()
	next := doc.clone()
	next.Version = expectedVersion + 1
	next.UpdatedAt = now.UnixMilli()

	payload, err := json.Marshal(next)
	if err != nil {
		return nil, errs.Wrap(err, "marshal cart failed")
	}

	key := rediskeys.CartKey(userID)
	ttl := s.lifetime(next, now)

	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readDocument(ctx, tx, key)
		if err != nil && !errors.Is(err, ErrCartNotFound) {
			return err
		}
		if current != nil && current.Version != expectedVersion {
			return ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, ttl)
			return nil
		})
		return err
	}, key)

	if err != nil {
		return nil, s.translate(err, "write cart")
	}

	return next, nil
}

// Replace implements Store
func (s *RedisStore) Replace(ctx context.Context, userID string, doc *Document) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	payload, err := json.Marshal(doc)
	if err != nil {
		return errs.Wrap(err, "marshal cart failed")
	}

	key := rediskeys.CartKey(userID)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readDocument(ctx, tx, key)
		if err != nil {
			return err
		}
		if current.Version != doc.Version {
			return ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, payload, redis.SetArgs{KeepTTL: true})
			return nil
		})
		return err
	}, key)

	return s.translate(err, "replace cart")
}

// Delete implements Store
func (s *RedisStore) Delete(ctx context.Context, userID string, expectedVersion int64) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	key := rediskeys.CartKey(userID)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readDocument(ctx, tx, key)
		if err != nil {
			return err
		}
		if current.Version != expectedVersion {
			return ErrVersionConflict
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)

	return s.translate(err, "delete cart")
}

// ScanUserIDs implements Store
func (s *RedisStore) ScanUserIDs(ctx context.Context, cursor uint64, count int64) ([]string, uint64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	keys, next, err := s.client.Scan(ctx, cursor, rediskeys.CartKeyPattern, count).Result()
	if err != nil {
		return nil, 0, errs.Dependency(err, "scan cart keys")
	}

	userIDs := make([]string, 0, len(keys))
	for _, key := range keys {
		userIDs = append(userIDs, strings.TrimPrefix(key, rediskeys.CartKeyPrefix))
	}
	return userIDs, next, nil
}

// lifetime is max(minTTL, time until expiresAt) when the document declares an
// expiry, otherwise the flat cart TTL
func (s *RedisStore) lifetime(doc *Document, now time.Time) time.Duration {
	if doc.ExpiresAt == nil {
		return s.ttl
	}

	remaining := time.UnixMilli(*doc.ExpiresAt).Sub(now).Truncate(time.Second)
	if remaining < s.minTTL {
		return s.minTTL
	}
	return remaining
}

func (s *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// translate maps transaction outcomes onto the store's error vocabulary
func (s *RedisStore) translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, redis.TxFailedErr):
		return ErrVersionConflict
	case errors.Is(err, ErrVersionConflict), errors.Is(err, ErrCartNotFound):
		return err
	default:
		return errs.Dependency(err, op)
	}
}

// getter is satisfied by both the client and a WATCH transaction
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readDocument(ctx context.Context, cmd getter, key string) (*Document, error) {
	data, err := cmd.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, errs.Dependency(err, "redis get cart")
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errs.Wrap(err, "unmarshal cart failed")
	}
	if doc.Items == nil {
		doc.Items = []LineItem{}
	}
	return &doc, nil
}
