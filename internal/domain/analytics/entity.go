// internal/domain/analytics/entity.go
package analytics

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/your-org/storefront-backend/internal/pkg/validation"
)

// Action is a cart event kind
type Action string

const (
	ActionAdd      Action = "add"
	ActionRemove   Action = "remove"
	ActionUpdate   Action = "update"
	ActionAbandon  Action = "abandon"
	ActionCheckout Action = "checkout"
)

// ErrInvalidEvent is returned for malformed analytics payloads
var ErrInvalidEvent = errors.New("invalid analytics data")

// Event is one cart analytics record. Timestamp is unix milliseconds and
// decides which daily partition the event lands in.
type Event struct {
	CartID    string           `json:"cartId" binding:"required"`
	UserID    string           `json:"userId" binding:"required"`
	Action    Action           `json:"action" binding:"required,oneof=add remove update abandon checkout"`
	ProductID string           `json:"productId,omitempty"`
	Quantity  *int             `json:"quantity,omitempty" binding:"omitempty,min=0"`
	Value     *decimal.Decimal `json:"value,omitempty"`
	Timestamp int64            `json:"timestamp" binding:"gt=0"`
	SessionID string           `json:"sessionId" binding:"required"`
}

// Validate checks the event payload
func (e Event) Validate() error {
	if err := validation.Struct(e); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEvent, validation.Message(err))
	}
	return nil
}

// Day returns the UTC calendar day (YYYY-MM-DD) of the event timestamp
func (e Event) Day() string {
	return time.UnixMilli(e.Timestamp).UTC().Format(time.DateOnly)
}

// DailySummary aggregates one day of cart events
type DailySummary struct {
	Date       string          `json:"date"`
	Total      int             `json:"total"`
	ByAction   map[Action]int  `json:"byAction"`
	TotalValue decimal.Decimal `json:"totalValue"`
	Users      int             `json:"uniqueUsers"`
	Skipped    int             `json:"skipped,omitempty"`
}
