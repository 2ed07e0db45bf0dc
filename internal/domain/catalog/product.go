package catalog

import (
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is a sellable item. Orders snapshot its price and weight at
// creation time; later product edits never rewrite existing orders.
type Product struct {
	shared.StoreAggregateRoot
	Name           string          `gorm:"type:varchar(255);not null"`
	SKU            string          `gorm:"type:varchar(100);not null;index"`
	Price          decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Weight         decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"` // per-unit weight
	TrackInventory bool            `gorm:"not null;default:true"`
	Active         bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(storeID uuid.UUID, name, sku string, price decimal.Decimal) (*Product, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "Product SKU cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Product price cannot be negative")
	}

	return &Product{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		Name:               name,
		SKU:                sku,
		Price:              price,
		Weight:             decimal.Zero,
		TrackInventory:     true,
		Active:             true,
	}, nil
}

// SetWeight sets the per-unit shipping weight
func (p *Product) SetWeight(weight decimal.Decimal) error {
	if weight.IsNegative() {
		return shared.NewDomainError("INVALID_WEIGHT", "Product weight cannot be negative")
	}
	p.Weight = weight
	p.Touch()
	return nil
}

// Deactivate removes the product from sale without deleting it
func (p *Product) Deactivate() {
	p.Active = false
	p.Touch()
}
