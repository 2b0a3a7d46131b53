package order

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order has no items")
	ErrMissingName       = errors.New("customer name is required")
	ErrMissingPhone      = errors.New("phone number is required")
	ErrInvalidDelivery   = errors.New("invalid delivery option")
	ErrInvalidPayment    = errors.New("invalid payment method")
	ErrMissingAddress    = errors.New("delivery address is required for shipping")
	ErrUnknownProduct    = errors.New("order references an unknown product")
	ErrAlreadyConfirmed  = errors.New("order is already confirmed")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// StockConflictError carries every shortfall found while checking an
// order against live stock, not just the first one, so the admin sees
// the full picture in one pass.
type StockConflictError struct {
	Shortfalls []Shortfall
}

func (e *StockConflictError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, fmt.Sprintf(
			"%s: requested %d, available %d",
			s.Name, s.Requested, s.Available,
		))
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}
