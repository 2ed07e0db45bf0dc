package store

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides access to stores and their configuration
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Store, error)
	// LoadConfig loads the store with its discounts, shipping methods and
	// payment methods preloaded, and returns the typed config snapshot.
	LoadConfig(ctx context.Context, id uuid.UUID) (*Config, error)
	Save(ctx context.Context, s *Store) error
}
