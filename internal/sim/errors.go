package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrSimulationNotStarted is returned by operations that require an
	// initialized simulation.
	ErrSimulationNotStarted = errors.New("simulation not started")

	// ErrDuplicateID is returned when an order id is already in use.
	ErrDuplicateID = errors.New("id already exists")

	// ErrMissingSupplier is returned when a purchase order references an
	// unknown supplier.
	ErrMissingSupplier = errors.New("supplier not found")

	// ErrUnknownProduct is returned when an order references a product
	// that is not in the catalog.
	ErrUnknownProduct = errors.New("product not found")

	// ErrNotFinishedProduct is returned when a manufacturing order targets
	// a raw material.
	ErrNotFinishedProduct = errors.New("product is not a finished product")
)

// InsufficientInventoryError reports a debit that exceeds the available
// quantity. Every debit in the engine is gated behind an availability
// check, so this error surfacing means a core invariant was violated.
type InsufficientInventoryError struct {
	ProductID int64
	Requested int
	Available int
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for product %d: requested=%d, available=%d",
		e.ProductID, e.Requested, e.Available)
}
