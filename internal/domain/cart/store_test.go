package cart

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	rediskeys "github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/pkg/clock"
)

var testNow = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

// setupTestStore creates a miniredis server and a RedisStore bound to it
func setupTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis, *clock.MockClock) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	clk := clock.NewMockClock(testNow)
	return NewRedisStore(client, clk, config.NewTestConfig()), mr, clk
}

func sampleItem(productID string, qty int) LineItem {
	return LineItem{
		ID:        "item_" + productID,
		ProductID: productID,
		Name:      "Cà phê " + productID,
		Price:     decimal.NewFromInt(45000),
		Quantity:  qty,
	}
}

func storedDocument(t *testing.T, mr *miniredis.Miniredis, userID string) *Document {
	t.Helper()

	raw, err := mr.Get(rediskeys.CartKey(userID))
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))
	return &doc
}

func TestStore_ReadMissing(t *testing.T) {
	store, _, _ := setupTestStore(t)

	doc, err := store.Read(context.Background(), "nobody")
	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, doc)
}

func TestStore_WriteVersionMonotonic(t *testing.T) {
	store, mr, clk := setupTestStore(t)
	ctx := context.Background()

	doc := newDocument()
	for expected := int64(0); expected < 5; expected++ {
		doc.Items = append(doc.Items, sampleItem(string(rune('a'+expected)), 1))
		clk.Add(time.Second)

		saved, err := store.Write(ctx, "u1", doc, expected)
		require.NoError(t, err)
		assert.Equal(t, expected+1, saved.Version)
		assert.Equal(t, clk.Now().UnixMilli(), saved.UpdatedAt)

		stored := storedDocument(t, mr, "u1")
		assert.Equal(t, expected+1, stored.Version)
		assert.Len(t, stored.Items, int(expected)+1)
		doc = saved
	}
}

func TestStore_RejectsStaleWrite(t *testing.T) {
	store, mr, _ := setupTestStore(t)
	ctx := context.Background()

	doc := newDocument()
	doc.Items = append(doc.Items, sampleItem("p1", 1))
	_, err := store.Write(ctx, "u1", doc, 0)
	require.NoError(t, err)
	_, err = store.Write(ctx, "u1", doc, 1)
	require.NoError(t, err)

	before, err := mr.Get(rediskeys.CartKey("u1"))
	require.NoError(t, err)

	stale := newDocument()
	stale.Items = append(stale.Items, sampleItem("p2", 7))
	saved, err := store.Write(ctx, "u1", stale, 1)
	assert.ErrorIs(t, err, ErrVersionConflict)
	assert.Nil(t, saved)

	after, err := mr.Get(rediskeys.CartKey("u1"))
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestStore_ConcurrentWritersOnlyOneWins(t *testing.T) {
	store, mr, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, "u1", newDocument(), 0)
	require.NoError(t, err)

	const writers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			doc := newDocument()
			doc.Items = append(doc.Items, sampleItem("p1", i+1))
			_, err := store.Write(ctx, "u1", doc, 1)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case assert.ErrorIs(t, err, ErrVersionConflict):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, writers-1, conflicts)
	assert.Equal(t, int64(2), storedDocument(t, mr, "u1").Version)
}

func TestStore_WriteTTL(t *testing.T) {
	store, mr, _ := setupTestStore(t)
	ctx := context.Background()

	t.Run("flat ttl without expiry", func(t *testing.T) {
		_, err := store.Write(ctx, "flat", newDocument(), 0)
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, mr.TTL(rediskeys.CartKey("flat")))
	})

	t.Run("expiry beyond minimum", func(t *testing.T) {
		doc := newDocument()
		expiresAt := testNow.Add(3 * time.Hour).UnixMilli()
		doc.ExpiresAt = &expiresAt

		_, err := store.Write(ctx, "long", doc, 0)
		require.NoError(t, err)
		assert.Equal(t, 3*time.Hour, mr.TTL(rediskeys.CartKey("long")))
	})

	t.Run("expiry clamped to minimum", func(t *testing.T) {
		doc := newDocument()
		expiresAt := testNow.Add(10 * time.Minute).UnixMilli()
		doc.ExpiresAt = &expiresAt

		_, err := store.Write(ctx, "short", doc, 0)
		require.NoError(t, err)
		assert.Equal(t, time.Hour, mr.TTL(rediskeys.CartKey("short")))
	})
}

func TestStore_ReplaceKeepsVersionAndTTL(t *testing.T) {
	store, mr, _ := setupTestStore(t)
	ctx := context.Background()

	doc := newDocument()
	doc.Items = append(doc.Items, sampleItem("p1", 1), sampleItem("p2", 2))
	saved, err := store.Write(ctx, "u1", doc, 0)
	require.NoError(t, err)

	mr.FastForward(time.Hour)
	saved.Items = saved.Items[:1]
	require.NoError(t, store.Replace(ctx, "u1", saved))

	stored := storedDocument(t, mr, "u1")
	assert.Equal(t, int64(1), stored.Version)
	assert.Len(t, stored.Items, 1)
	assert.Equal(t, 23*time.Hour, mr.TTL(rediskeys.CartKey("u1")))

	saved.Version = 7
	assert.ErrorIs(t, store.Replace(ctx, "u1", saved), ErrVersionConflict)
	assert.ErrorIs(t, store.Replace(ctx, "missing", saved), ErrCartNotFound)
}

func TestStore_DeleteIsConditional(t *testing.T) {
	store, mr, _ := setupTestStore(t)
	ctx := context.Background()

	_, err := store.Write(ctx, "u1", newDocument(), 0)
	require.NoError(t, err)

	assert.ErrorIs(t, store.Delete(ctx, "u1", 0), ErrVersionConflict)
	assert.True(t, mr.Exists(rediskeys.CartKey("u1")))

	require.NoError(t, store.Delete(ctx, "u1", 1))
	assert.False(t, mr.Exists(rediskeys.CartKey("u1")))
}

func TestStore_ScanUserIDs(t *testing.T) {
	store, mr, _ := setupTestStore(t)
	ctx := context.Background()

	want := []string{"alice", "bob", "carol", "dave"}
	for _, id := range want {
		_, err := store.Write(ctx, id, newDocument(), 0)
		require.NoError(t, err)
	}
	require.NoError(t, mr.Set(rediskeys.InventoryKey("p1"), "5"))

	var (
		got    []string
		cursor uint64
	)
	for {
		ids, next, err := store.ScanUserIDs(ctx, cursor, 2)
		require.NoError(t, err)
		got = append(got, ids...)
		if next == 0 {
			break
		}
		cursor = next
	}

	sort.Strings(got)
	assert.Equal(t, want, got)
}
