package store

import (
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store represents a merchant storefront. Orders, products and stock
// levels are always scoped to exactly one store.
type Store struct {
	shared.BaseAggregateRoot
	Name     string               `gorm:"type:varchar(255);not null"`
	Slug     string               `gorm:"type:varchar(100);not null;uniqueIndex"`
	Currency valueobject.Currency `gorm:"type:varchar(3);not null;default:'USD'"`
	TaxRate  decimal.Decimal      `gorm:"type:decimal(8,4);not null;default:0"` // percent, e.g. 5 means 5%
	Active   bool                 `gorm:"not null;default:true"`

	// Associations - loaded when building the store Config
	Discounts       []Discount       `gorm:"foreignKey:StoreID;references:ID"`
	ShippingMethods []ShippingMethod `gorm:"foreignKey:StoreID;references:ID"`
	PaymentMethods  []PaymentMethod  `gorm:"foreignKey:StoreID;references:ID"`
}

// TableName returns the table name for GORM
func (Store) TableName() string {
	return "stores"
}

// NewStore creates a new store
func NewStore(name, slug string, currency valueobject.Currency, taxRate decimal.Decimal) (*Store, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Store name cannot be empty")
	}
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_SLUG", "Store slug cannot be empty")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	return &Store{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Currency:          currency,
		TaxRate:           taxRate,
		Active:            true,
	}, nil
}

// Config is the typed per-store configuration handed to the pricing
// engine and the processing service. It is loaded once per operation and
// passed explicitly; there are no global settings lookups.
type Config struct {
	StoreID         uuid.UUID
	Currency        valueobject.Currency
	TaxRate         decimal.Decimal
	Active          bool
	Discounts       []Discount
	ShippingMethods []ShippingMethod
	PaymentMethods  []PaymentMethod
}

// Config builds the typed configuration snapshot for this store
func (s *Store) Config() Config {
	return Config{
		StoreID:         s.ID,
		Currency:        s.Currency,
		TaxRate:         s.TaxRate,
		Active:          s.Active,
		Discounts:       s.Discounts,
		ShippingMethods: s.ShippingMethods,
		PaymentMethods:  s.PaymentMethods,
	}
}

// FindDiscountByCode returns the discount with the given code, or nil
func (c *Config) FindDiscountByCode(code string) *Discount {
	for i := range c.Discounts {
		if c.Discounts[i].Code == code {
			return &c.Discounts[i]
		}
	}
	return nil
}

// FindShippingMethod returns the shipping method with the given ID, or nil
func (c *Config) FindShippingMethod(id uuid.UUID) *ShippingMethod {
	for i := range c.ShippingMethods {
		if c.ShippingMethods[i].ID == id {
			return &c.ShippingMethods[i]
		}
	}
	return nil
}

// HasPaymentMethod reports whether the store offers the payment method
func (c *Config) HasPaymentMethod(id uuid.UUID) bool {
	for i := range c.PaymentMethods {
		if c.PaymentMethods[i].ID == id && c.PaymentMethods[i].Active {
			return true
		}
	}
	return false
}
