// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/analytics"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/inventory"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/settings"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-backend/internal/interfaces/http/middleware"
	"github.com/your-org/storefront-backend/internal/interfaces/http/routes"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/clock"
	"github.com/your-org/storefront-backend/internal/pkg/ratelimit"
	"gorm.io/gorm"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	log         *logrus.Logger
	gin         *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient redis.UniversalClient
	startedAt   time.Time
}

// NewServer wires services and handlers and builds the router
func NewServer(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient, log *logrus.Logger) (*Server, error) {
	return newServer(cfg, db, redisClient, log, clock.NewRealClock(), inventory.NewGormStockSource(db))
}

func newServer(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient, log *logrus.Logger, clk clock.Clock, stock inventory.StockSource) (*Server, error) {
	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
	}

	limiter, err := ratelimit.New(cfg, redisClient, clk)
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limiter: %w", err)
	}

	s := &Server{
		config:      cfg,
		log:         log,
		gin:         gin.New(),
		db:          db,
		redisClient: redisClient,
		startedAt:   clk.Now(),
	}

	if err := s.gin.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	s.setupMiddleware()
	s.setupRoutes(limiter, clk, stock)

	return s, nil
}

// Handler exposes the router
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	s.log.WithFields(logrus.Fields{
		"port":     s.config.Server.Port,
		"base_url": fmt.Sprintf("http://localhost:%s/api/v1", s.config.Server.Port),
	}).Info("HTTP server starting")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	s.log.Info("HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	s.gin.Use(middleware.RequestID())
	s.gin.Use(middleware.Recovery(s.log))
	s.gin.Use(middleware.Logger(s.log))
	s.gin.Use(middleware.CORS(s.config))
	s.gin.Use(middleware.SecurityHeaders())
	s.gin.Use(middleware.RequestSizeLimit(s.config.Server.MaxBodyBytes))
	s.gin.Use(middleware.Timeout(s.config.Server.RequestTimeout))
}

// setupRoutes builds the domain services and mounts the API
func (s *Server) setupRoutes(limiter ratelimit.Limiter, clk clock.Clock, stock inventory.StockSource) {
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	analyticsService := analytics.NewService(s.redisClient, s.config, s.log)
	inventoryService := inventory.NewService(s.redisClient, stock, s.config, s.log)
	cartStore := cart.NewRedisStore(s.redisClient, clk, s.config)
	cartService := cart.NewService(cartStore, inventoryService, analyticsService, clk, s.log, s.config)

	h := routes.Handlers{
		Cart:         handlers.NewCartHandler(cartService, s.log),
		Analytics:    handlers.NewAnalyticsHandler(analyticsService, s.log),
		Inventory:    handlers.NewInventoryHandler(inventoryService, s.log),
		Product:      handlers.NewProductHandler(product.NewService(s.db), s.log),
		PageSettings: handlers.NewPageSettingsHandler(settings.NewService(s.db), s.log),
	}
	g := routes.Guards{
		Auth:        middleware.AuthMiddleware(auth.NewJWTManager(s.config)),
		Admin:       middleware.AdminMiddleware(),
		RateLimit:   middleware.RateLimit(limiter, s.log),
		InternalKey: middleware.InternalKey(s.config.Security.InternalAPIKey),
	}

	routes.SetupRoutes(s.gin.Group("/api/v1"), h, g)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     "Storefront API",
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"endpoints": gin.H{
					"cart":          "/api/v1/cart",
					"products":      "/api/v1/products",
					"inventory":     "/api/v1/inventory",
					"page_settings": "/api/v1/page-settings",
					"admin":         "/api/v1/admin",
				},
			})
		})
	}
}

// healthCheck reports liveness of the database and Redis
func (s *Server) healthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database ping failed",
			})
			return
		}
	}

	if err := s.redisClient.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "redis ping failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}
