package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository provides access to products
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindByIDForStore(ctx context.Context, storeID, id uuid.UUID) (*Product, error)
	// FindByIDsForStore loads products by ID, keyed by product ID.
	// Missing IDs are simply absent from the result map.
	FindByIDsForStore(ctx context.Context, storeID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]*Product, error)
	Save(ctx context.Context, p *Product) error
}
