package services

import (
	"fmt"
	"strings"
)

// Checkout failures map onto a fixed taxonomy so controllers can pick the
// right status code and the client gets an actionable message. Any failure
// aborts the whole operation — there are no partial effects to report.

// ValidationError covers bad input detected before any datastore access:
// empty cart, non-positive quantity, malformed percentages, unknown payment
// method.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NotFoundError means a referenced record does not exist or is inactive.
type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// StockShortage describes one cart line that exceeded available stock.
type StockShortage struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Requested   int    `json:"requested"`
	Available   int    `json:"available"`
}

// InsufficientStockError aborts the whole checkout. It carries every
// failing line, not just the first, so the client can fix the cart in one
// round trip.
type InsufficientStockError struct {
	Lines []StockShortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, len(e.Lines))
	for i, l := range e.Lines {
		parts[i] = fmt.Sprintf("%s: requested %d, available %d", l.ProductName, l.Requested, l.Available)
	}
	return "insufficient stock: " + strings.Join(parts, "; ")
}

// ConflictError means a concurrent mutation invalidated this attempt
// (duplicate sale number, lost stock race). The caller should resubmit the
// checkout as a brand-new attempt.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return "checkout conflict: " + e.Reason
}

// StorageError wraps an unexpected datastore failure. Business detail is
// deliberately not exposed; the transaction rolled back with no partial
// effects.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return "storage failure: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
