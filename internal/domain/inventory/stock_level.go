package inventory

import (
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StockLevel tracks inventory for one product at one stock location.
// It is the aggregate root for inventory arithmetic. The composite
// identifier is ProductID + LocationID.
//
// Invariant: ReservedQuantity <= Quantity at all times.
type StockLevel struct {
	shared.StoreAggregateRoot
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_product_location,priority:1"`
	LocationID       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_stock_level_product_location,priority:2"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // On-hand quantity
	ReservedQuantity decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // Held for pending orders
	Position         int             `gorm:"not null;default:0"`                    // Creation order, drives allocation order
}

// TableName returns the table name for GORM
func (StockLevel) TableName() string {
	return "stock_levels"
}

// NewStockLevel creates a new stock level for a product-location combination
func NewStockLevel(storeID, productID, locationID uuid.UUID, position int) (*StockLevel, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if locationID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_LOCATION", "Location ID cannot be empty")
	}

	return &StockLevel{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		ProductID:          productID,
		LocationID:         locationID,
		Quantity:           decimal.Zero,
		ReservedQuantity:   decimal.Zero,
		Position:           position,
	}, nil
}

// AvailableQuantity returns the quantity not held by reservations
func (l *StockLevel) AvailableQuantity() decimal.Decimal {
	return l.Quantity.Sub(l.ReservedQuantity)
}

// CanReserve reports whether the requested quantity fits the available stock
func (l *StockLevel) CanReserve(quantity decimal.Decimal) bool {
	return l.AvailableQuantity().GreaterThanOrEqual(quantity)
}

// AddStock increases the on-hand quantity (receiving, restock, returns)
func (l *StockLevel) AddStock(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}

	l.Quantity = l.Quantity.Add(quantity)
	l.Touch()
	l.IncrementVersion()

	return nil
}

// Reserve holds a quantity of available stock for a pending order
func (l *StockLevel) Reserve(quantity decimal.Decimal) error {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}
	if !l.CanReserve(quantity) {
		return shared.NewDomainError("INSUFFICIENT_STOCK", "Insufficient available stock to reserve")
	}

	l.ReservedQuantity = l.ReservedQuantity.Add(quantity)
	l.Touch()
	l.IncrementVersion()

	return nil
}

// Release returns up to the requested quantity of reserved stock back to
// available. It floors at zero and returns the quantity actually
// released so callers can carry the remainder to the next location.
func (l *StockLevel) Release(quantity decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	released := quantity
	if l.ReservedQuantity.LessThan(quantity) {
		released = l.ReservedQuantity
	}
	if released.IsZero() {
		return decimal.Zero
	}

	l.ReservedQuantity = l.ReservedQuantity.Sub(released)
	l.Touch()
	l.IncrementVersion()

	return released
}

// Consume converts up to the requested quantity of reserved stock into
// an outbound deduction (shipment). Both on-hand and reserved decrease.
// Returns the quantity actually consumed.
func (l *StockLevel) Consume(quantity decimal.Decimal) decimal.Decimal {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	consumed := quantity
	if l.ReservedQuantity.LessThan(quantity) {
		consumed = l.ReservedQuantity
	}
	if consumed.IsZero() {
		return decimal.Zero
	}

	l.ReservedQuantity = l.ReservedQuantity.Sub(consumed)
	l.Quantity = l.Quantity.Sub(consumed)
	l.Touch()
	l.IncrementVersion()

	return consumed
}
