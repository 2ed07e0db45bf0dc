package store

import (
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingCalculation determines how a shipping method prices an order
type ShippingCalculation string

const (
	ShippingCalculationFixed      ShippingCalculation = "fixed"
	ShippingCalculationWeight     ShippingCalculation = "weight_based"
	ShippingCalculationPriceBased ShippingCalculation = "price_based"
)

// ShippingMethod is a store-configured shipping option
type ShippingMethod struct {
	shared.BaseEntity
	StoreID               uuid.UUID           `gorm:"type:uuid;not null;index"`
	Name                  string              `gorm:"type:varchar(100);not null"`
	Calculation           ShippingCalculation `gorm:"type:varchar(20);not null"`
	BaseCost              decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	WeightRate            decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"` // cost per weight unit
	FreeShippingThreshold decimal.Decimal     `gorm:"type:decimal(18,2);not null;default:0"`
	Active                bool                `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ShippingMethod) TableName() string {
	return "shipping_methods"
}

// NewShippingMethod creates a new shipping method
func NewShippingMethod(storeID uuid.UUID, name string, calculation ShippingCalculation, baseCost decimal.Decimal) (*ShippingMethod, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Shipping method name cannot be empty")
	}
	if baseCost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Base cost cannot be negative")
	}

	return &ShippingMethod{
		BaseEntity:            shared.NewBaseEntity(),
		StoreID:               storeID,
		Name:                  name,
		Calculation:           calculation,
		BaseCost:              baseCost,
		WeightRate:            decimal.Zero,
		FreeShippingThreshold: decimal.Zero,
		Active:                true,
	}, nil
}

// CostFor computes the shipping cost for an order subtotal and total
// weight. Unknown calculation policies cost nothing. A price_based
// method with a zero FreeShippingThreshold has no free tier and always
// charges BaseCost; zero is the unconfigured column default, not a
// threshold every subtotal clears.
func (m *ShippingMethod) CostFor(subtotal, totalWeight decimal.Decimal) decimal.Decimal {
	switch m.Calculation {
	case ShippingCalculationFixed:
		return m.BaseCost
	case ShippingCalculationWeight:
		return m.BaseCost.Add(totalWeight.Mul(m.WeightRate)).Round(2)
	case ShippingCalculationPriceBased:
		if m.FreeShippingThreshold.GreaterThan(decimal.Zero) && subtotal.GreaterThanOrEqual(m.FreeShippingThreshold) {
			return decimal.Zero
		}
		return m.BaseCost
	}
	return decimal.Zero
}
