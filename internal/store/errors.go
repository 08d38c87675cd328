package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrEmptyCart is returned by ConfirmSale when the cart has no lines.
var ErrEmptyCart = errors.New("cart is empty")

// FieldError is a single field-level validation violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated field of an input, not just the
// first one found.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, ", ")
}

// NotFoundError is returned when an operation references a product id that is
// not in the live product set.
type NotFoundError struct {
	ProductID   uuid.UUID
	ProductName string
}

func (e *NotFoundError) Error() string {
	if e.ProductName != "" {
		return fmt.Sprintf("product %s no longer exists", e.ProductName)
	}
	return fmt.Sprintf("product %s not found", e.ProductID)
}

// InsufficientStockError is returned when a requested quantity exceeds the
// product's current live stock.
type InsufficientStockError struct {
	ProductID   uuid.UUID
	ProductName string
	Available   int
	Requested   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: only %d available", e.ProductName, e.Available)
}
