// internal/infrastructure/database/redis/keys.go
package redis

// Key layout shared by every Redis-backed component.
const (
	CartKeyPrefix      = "cart:"
	CartKeyPattern     = CartKeyPrefix + "*"
	inventoryKeyPrefix = "inventory:"
	analyticsKeyPrefix = "analytics:cart:"
	rateLimitKeyPrefix = "ratelimit:cart:"
)

// CartKey returns the key holding a user's cart document
func CartKey(userID string) string {
	return CartKeyPrefix + userID
}

// InventoryKey returns the key caching a product's stock level
func InventoryKey(productID string) string {
	return inventoryKeyPrefix + productID
}

// AnalyticsKey returns the list key for one UTC day (YYYY-MM-DD)
func AnalyticsKey(date string) string {
	return analyticsKeyPrefix + date
}

// RateLimitKey returns the fixed-window counter key for a user
func RateLimitKey(userID string) string {
	return rateLimitKeyPrefix + userID
}
