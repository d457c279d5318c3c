package order

import (
	"context"

	"github.com/google/uuid"
)

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// FindByID finds an order with its line items in stored order
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// Save creates or updates an order and replaces its line items in a
	// single transaction
	Save(ctx context.Context, order *Order) error
}

// Locker serializes modifications of one order
type Locker interface {
	// Lock blocks until the order's lock is held or ctx is done.
	// The returned function releases the lock.
	Lock(ctx context.Context, orderID uuid.UUID) (unlock func(), err error)
}
