package inventory

import (
	"context"

	"github.com/google/uuid"
)

// StockLevelRepository provides access to stock levels
type StockLevelRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StockLevel, error)
	// FindByProduct returns all stock levels for a product, ordered by
	// creation position.
	FindByProduct(ctx context.Context, storeID, productID uuid.UUID) ([]StockLevel, error)
	// FindByProductsForUpdate loads all stock levels for the given
	// products with row-level locks held for the current transaction, so
	// reservation arithmetic cannot interleave across operations.
	// Results are keyed by product ID, ordered by creation position.
	FindByProductsForUpdate(ctx context.Context, storeID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID][]*StockLevel, error)
	Save(ctx context.Context, level *StockLevel) error
	SaveAll(ctx context.Context, levels []*StockLevel) error
}
