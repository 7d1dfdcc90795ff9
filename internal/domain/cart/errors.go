// internal/domain/cart/errors.go
package cart

import (
	"errors"
	"strings"

	"github.com/your-org/storefront-backend/internal/pkg/validation"
)

var (
	ErrValidation            = errors.New("invalid request data")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrExceedsMaxQuantity    = errors.New("exceeds maximum quantity")
	ErrVersionConflict       = errors.New("cart was modified by another request, please refresh and try again")
	ErrCartNotFound          = errors.New("cart not found")
	ErrItemNotFound          = errors.New("item not found in cart")
)

// FieldError describes one invalid request field
type FieldError = validation.FieldError

// ValidationError carries field-level details and matches ErrValidation
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
