package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/clock"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"github.com/your-org/storefront-backend/internal/pkg/ratelimit"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) {
		userID, _ := GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"userId": userID})
	})
	r.GET("/", handlers...)
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, jwt *auth.JWTManager, userID, role string) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(userID, userID+"-name", role)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthMiddleware(t *testing.T) {
	jwt := auth.NewJWTManager(config.NewTestConfig())
	other := config.NewTestConfig()
	other.JWT.Secret = "a-completely-different-secret-value-5678"
	forged := auth.NewJWTManager(other)

	r := newRouter(AuthMiddleware(jwt))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", http.StatusUnauthorized},
		{"wrong signature", bearer(t, forged, "u1", "customer"), http.StatusUnauthorized},
		{"valid", bearer(t, jwt, "u1", "customer"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.JSONEq(t, `{"userId":"u1"}`, w.Body.String())
			}
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	jwt := auth.NewJWTManager(config.NewTestConfig())
	r := newRouter(AuthMiddleware(jwt), AdminMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", bearer(t, jwt, "u1", "customer"))
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", bearer(t, jwt, "ops", auth.RoleAdmin))
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	// without the auth middleware there is no role at all
	bare := newRouter(AdminMiddleware())
	assert.Equal(t, http.StatusUnauthorized, serve(bare, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestInternalKey(t *testing.T) {
	r := newRouter(InternalKey("s3cret"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req.Header.Set(HeaderInternalKey, "guess")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req.Header.Set(HeaderInternalKey, "s3cret")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	open := newRouter(InternalKey(""))
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderInternalKey, "")
	assert.Equal(t, http.StatusUnauthorized, serve(open, req).Code)
}

func withUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set(ContextUserID, userID)
		}
		c.Next()
	}
}

func TestRateLimit(t *testing.T) {
	clk := clock.NewMockClock(time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC))
	limiter := ratelimit.NewMemoryLimiter(clk, 2, time.Minute)

	r := newRouter(withUser("u1"), RateLimit(limiter, logger.Discard()))

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())

	// a different user has its own window
	r2 := newRouter(withUser("u2"), RateLimit(limiter, logger.Discard()))
	assert.Equal(t, http.StatusOK, serve(r2, httptest.NewRequest(http.MethodGet, "/", nil)).Code)

	clk.Add(time.Minute)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestRateLimit_RequiresUser(t *testing.T) {
	clk := clock.NewMockClock(time.Now())
	r := newRouter(withUser(""), RateLimit(ratelimit.NewMemoryLimiter(clk, 2, time.Minute), logger.Discard()))
	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis down")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r := newRouter(withUser("u1"), RateLimit(brokenLimiter{}, logger.Discard()))
	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}

func TestRequestID(t *testing.T) {
	r := newRouter(RequestID())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "req-abc")
	assert.Equal(t, "req-abc", serve(r, req).Header().Get(HeaderRequestID))

	req.Header.Set(HeaderRequestID, strings.Repeat("x", 65))
	assert.NotEqual(t, strings.Repeat("x", 65), serve(r, req).Header().Get(HeaderRequestID))
}

func TestIsOriginAllowed(t *testing.T) {
	allowed := []string{"http://localhost:3000", "*.hanghoaviet.vn"}

	assert.True(t, isOriginAllowed("http://localhost:3000", allowed))
	assert.True(t, isOriginAllowed("https://shop.hanghoaviet.vn", allowed))
	assert.False(t, isOriginAllowed("https://evilhanghoaviet.vn", allowed))
	assert.False(t, isOriginAllowed("http://localhost:4000", allowed))
	assert.True(t, isOriginAllowed("https://anything.example", []string{"*"}))
}

func TestCORS_Preflight(t *testing.T) {
	r := gin.New()
	r.Use(CORS(config.NewTestConfig()))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	w := serve(r, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestSizeLimit(t *testing.T) {
	r := gin.New()
	r.Use(RequestSizeLimit(16))
	r.POST("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("a", 64)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}"))
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(logger.Discard()))
	r.GET("/", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
