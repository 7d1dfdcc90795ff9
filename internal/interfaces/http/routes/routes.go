// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/storefront-backend/internal/interfaces/http/handlers"
)

// Handlers groups the endpoint handlers mounted under /api/v1
type Handlers struct {
	Cart         *handlers.CartHandler
	Analytics    *handlers.AnalyticsHandler
	Inventory    *handlers.InventoryHandler
	Product      *handlers.ProductHandler
	PageSettings *handlers.PageSettingsHandler
}

// Guards are the access-control middlewares applied per route group
type Guards struct {
	Auth        gin.HandlerFunc
	Admin       gin.HandlerFunc
	RateLimit   gin.HandlerFunc
	InternalKey gin.HandlerFunc
}

// SetupRoutes mounts every API route on rg
func SetupRoutes(rg *gin.RouterGroup, h Handlers, g Guards) {
	SetupCartRoutes(rg, h, g)
	SetupProductRoutes(rg, h)
	SetupInventoryRoutes(rg, h)
	SetupPageSettingsRoutes(rg, h, g)
	SetupAdminRoutes(rg, h, g)
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, h Handlers, g Guards) {
	cart := rg.Group("/cart")
	{
		// Operational sweep, shared secret instead of a session
		cart.POST("/cleanup", g.InternalKey, h.Cart.Cleanup)

		cart.POST("/analytics", g.Auth, h.Analytics.TrackCartEvent)

		user := cart.Group("", g.Auth, g.RateLimit)
		{
			user.GET("/:userId", h.Cart.GetCart)
			user.POST("/add", h.Cart.AddItem)
			user.PATCH("/update", h.Cart.UpdateItem)
			user.DELETE("/remove", h.Cart.RemoveItem)
		}
	}

	rg.POST("/analytics/cart", g.Auth, h.Analytics.TrackCartEvent)
}

// SetupProductRoutes sets up product related routes
func SetupProductRoutes(rg *gin.RouterGroup, h Handlers) {
	products := rg.Group("/products")
	{
		products.GET("", h.Product.GetProducts)
		products.GET("/:slug", h.Product.GetProductBySlug)
	}
}

// SetupInventoryRoutes sets up public stock routes
func SetupInventoryRoutes(rg *gin.RouterGroup, h Handlers) {
	rg.GET("/inventory/stock/:id", h.Inventory.GetStock)
}

// SetupPageSettingsRoutes sets up site settings routes. Reads are public.
func SetupPageSettingsRoutes(rg *gin.RouterGroup, h Handlers, g Guards) {
	pageSettings := rg.Group("/page-settings")
	{
		pageSettings.GET("", h.PageSettings.GetSettings)
		pageSettings.POST("", g.Auth, g.Admin, h.PageSettings.CreateSettings)
		pageSettings.PUT("/:id", g.Auth, g.Admin, h.PageSettings.UpdateSettings)
	}
}

// SetupAdminRoutes sets up admin routes
func SetupAdminRoutes(rg *gin.RouterGroup, h Handlers, g Guards) {
	admin := rg.Group("/admin")
	admin.Use(g.Auth, g.Admin)
	{
		admin.POST("/products", h.Product.CreateProduct)
		admin.PUT("/inventory/stock/:id", h.Inventory.SetStock)
		admin.GET("/analytics/cart", h.Analytics.GetCartSummary)
	}
}
