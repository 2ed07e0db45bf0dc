package ordering

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for Order aggregates
type Repository interface {
	// Save persists a new order with all of its children
	Save(ctx context.Context, order *Order) error

	// SaveWithLock persists an existing order using optimistic locking:
	// the update only applies if the stored version still matches, and
	// a lost race returns shared.ErrConcurrencyConflict.
	SaveWithLock(ctx context.Context, order *Order) error

	// FindByID loads an order with all of its children
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForStore loads an order scoped to a store
	FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*Order, error)

	// FindByOrderNumber loads an order by its store-unique number
	FindByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (*Order, error)

	// ExistsByOrderNumber reports whether an order number is taken in a store
	ExistsByOrderNumber(ctx context.Context, storeID uuid.UUID, orderNumber string) (bool, error)

	// FindByUser lists a user's orders in a store, newest first
	FindByUser(ctx context.Context, storeID, userID uuid.UUID, limit, offset int) ([]*Order, int64, error)

	// GenerateOrderNumber produces the next order number for a store
	GenerateOrderNumber(ctx context.Context, storeID uuid.UUID) (string, error)
}
