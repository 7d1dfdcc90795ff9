package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/clock"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
)

type memoryStock struct {
	mu     sync.Mutex
	levels map[string]int
}

func (m *memoryStock) Stock(_ context.Context, productID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	level, ok := m.levels[productID]
	if !ok {
		return 0, inventory.ErrProductNotFound
	}
	return level, nil
}

func (m *memoryStock) SetStock(_ context.Context, productID string, stock int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.levels[productID]; !ok {
		return inventory.ErrProductNotFound
	}
	m.levels[productID] = stock
	return nil
}

type testEnv struct {
	handler http.Handler
	mr      *miniredis.Miniredis
	jwt     *auth.JWTManager
	cfg     *config.Config
}

func setupTestServer(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := config.NewTestConfig()
	for _, m := range mutate {
		m(cfg)
	}

	stock := &memoryStock{levels: map[string]int{"P1": 10, "P2": 3}}
	srv, err := newServer(cfg, nil, client, logger.Discard(), clock.NewMockClock(time.Now()), stock)
	require.NoError(t, err)

	return &testEnv{
		handler: srv.Handler(),
		mr:      mr,
		jwt:     auth.NewJWTManager(cfg),
		cfg:     cfg,
	}
}

func (e *testEnv) do(t *testing.T, method, path, userID string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		role := "customer"
		if userID == "admin" {
			role = auth.RoleAdmin
		}
		token, err := e.jwt.GenerateAccessToken(userID, userID, role)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func addBody(userID, productID string, qty int, version int64) map[string]interface{} {
	return map[string]interface{}{
		"userId":    userID,
		"productId": productID,
		"name":      "Cà phê Trung Nguyên",
		"price":     189000,
		"quantity":  qty,
		"imageUrl":  "https://cdn.example.vn/p1.jpg",
		"version":   version,
	}
}

func TestCartFlow(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodGet, "/api/v1/cart/u1", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":[],"version":0}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/v1/cart/add", "u1", addBody("u1", "P1", 2, 0))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	added := decode(t, w)
	assert.EqualValues(t, 1, added["version"])
	item := added["item"].(map[string]interface{})
	itemID := item["id"].(string)
	assert.Regexp(t, `^item_`, itemID)

	// replaying the same version loses
	w = env.do(t, http.MethodPost, "/api/v1/cart/add", "u1", addBody("u1", "P1", 1, 0))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPatch, "/api/v1/cart/update", "u1", map[string]interface{}{
		"userId": "u1", "itemId": itemID, "quantity": 5, "version": 1,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 2, decode(t, w)["version"])

	w = env.do(t, http.MethodGet, "/api/v1/cart/u1", "u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	view := decode(t, w)
	assert.EqualValues(t, 2, view["version"])
	assert.Len(t, view["items"], 1)
	assert.NotNil(t, view["updatedAt"])

	w = env.do(t, http.MethodDelete, "/api/v1/cart/remove", "u1", map[string]interface{}{
		"userId": "u1", "itemId": itemID, "version": 2,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"itemId":"`+itemID+`","version":3}`, w.Body.String())

	w = env.do(t, http.MethodDelete, "/api/v1/cart/remove", "u1", map[string]interface{}{
		"userId": "u1", "itemId": itemID, "version": 3,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCart_ErrorMapping(t *testing.T) {
	env := setupTestServer(t)

	t.Run("no session", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/cart/u1", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("other user's cart", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/cart/u2", "u1", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = env.do(t, http.MethodPost, "/api/v1/cart/add", "u1", addBody("u2", "P1", 1, 0))
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("validation", func(t *testing.T) {
		body := addBody("u1", "P1", 0, 0)
		body["imageUrl"] = "not a url"
		w := env.do(t, http.MethodPost, "/api/v1/cart/add", "u1", body)
		require.Equal(t, http.StatusBadRequest, w.Code)
		out := decode(t, w)
		assert.Equal(t, "Invalid request data", out["error"])
		details := out["details"].([]interface{})
		require.Len(t, details, 2)
		assert.Equal(t, "quantity", details[0].(map[string]interface{})["field"])
		assert.Equal(t, "imageUrl", details[1].(map[string]interface{})["field"])
	})

	t.Run("malformed json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/add", bytes.NewBufferString("{"))
		token, _ := env.jwt.GenerateAccessToken("u1", "u1", "customer")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		env.handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("insufficient inventory", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/cart/add", "u1", addBody("u1", "P2", 4, 0))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "insufficient inventory", decode(t, w)["error"])
	})

	t.Run("unknown product has no stock", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/cart/add", "u1", addBody("u1", "P404", 1, 0))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("update on missing cart", func(t *testing.T) {
		w := env.do(t, http.MethodPatch, "/api/v1/cart/update", "u9", map[string]interface{}{
			"userId": "u9", "itemId": "item_x", "quantity": 1, "version": 0,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCart_RateLimited(t *testing.T) {
	env := setupTestServer(t, func(cfg *config.Config) {
		cfg.Security.RateLimitPerMinute = 3
	})

	for i := 0; i < 3; i++ {
		w := env.do(t, http.MethodGet, "/api/v1/cart/u1", "u1", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := env.do(t, http.MethodGet, "/api/v1/cart/u1", "u1", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))

	// other users are unaffected
	assert.Equal(t, http.StatusOK, env.do(t, http.MethodGet, "/api/v1/cart/u2", "u2", nil).Code)
}

func TestCartCleanup_RequiresInternalKey(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodPost, "/api/v1/cart/cleanup", "admin", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/cleanup", nil)
	req.Header.Set("X-Internal-Key", env.cfg.Security.InternalAPIKey)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cleanedCarts":0}`, rec.Body.String())
}

func TestAnalytics_TrackAndSummarize(t *testing.T) {
	env := setupTestServer(t)

	now := time.Now().UTC()
	event := map[string]interface{}{
		"cartId":    "cart-u1",
		"userId":    "u1",
		"action":    "abandon",
		"timestamp": now.UnixMilli(),
		"sessionId": "sess-1",
	}

	w := env.do(t, http.MethodPost, "/api/v1/cart/analytics", "u1", event)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/v1/analytics/cart", "u2", event)
	assert.Equal(t, http.StatusForbidden, w.Code)

	event["action"] = "teleport"
	w = env.do(t, http.MethodPost, "/api/v1/analytics/cart", "u1", event)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// storage failures are not surfaced to the client
	env.mr.SetError("ERR backend unavailable")
	event["action"] = "checkout"
	w = env.do(t, http.MethodPost, "/api/v1/cart/analytics", "u1", event)
	assert.Equal(t, http.StatusOK, w.Code)
	env.mr.SetError("")

	w = env.do(t, http.MethodGet, "/api/v1/admin/analytics/cart?date="+now.Format(time.DateOnly), "u1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, http.MethodGet, "/api/v1/admin/analytics/cart?date="+now.Format(time.DateOnly), "admin", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["total"])
}

func TestInventoryEndpoints(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodGet, "/api/v1/inventory/stock/P2", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"productId":"P2","stock":3}`, w.Body.String())

	w = env.do(t, http.MethodPut, "/api/v1/admin/inventory/stock/P2", "admin", map[string]int{"stock": 12})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// the cached level was invalidated
	w = env.do(t, http.MethodGet, "/api/v1/inventory/stock/P2", "", nil)
	assert.JSONEq(t, `{"productId":"P2","stock":12}`, w.Body.String())

	w = env.do(t, http.MethodPut, "/api/v1/admin/inventory/stock/P2", "admin", map[string]int{"stock": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/v1/admin/inventory/stock/P404", "admin", map[string]int{"stock": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAdminProducts_Guarded(t *testing.T) {
	env := setupTestServer(t)
	body := map[string]interface{}{"name": "Nón lá Huế", "category": "crafts", "price": 150000}

	assert.Equal(t, http.StatusUnauthorized, env.do(t, http.MethodPost, "/api/v1/admin/products", "", body).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, http.MethodPost, "/api/v1/admin/products", "u1", body).Code)

	// rejected by binding before the catalog is reached
	body["price"] = -1
	w := env.do(t, http.MethodPost, "/api/v1/admin/products", "admin", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"price"`)
}

func TestHealthAndRequestID(t *testing.T) {
	env := setupTestServer(t)

	w := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))

	env.mr.SetError("ERR backend unavailable")
	w = env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
