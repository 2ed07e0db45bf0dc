package store

import (
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// PaymentMethod is a store-configured payment option. Actual charging is
// handled by an external payments collaborator; the core only validates
// that an order references an active method of its store.
type PaymentMethod struct {
	shared.BaseEntity
	StoreID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name     string    `gorm:"type:varchar(100);not null"`
	Provider string    `gorm:"type:varchar(50);not null"`
	Active   bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (PaymentMethod) TableName() string {
	return "payment_methods"
}

// NewPaymentMethod creates a new payment method
func NewPaymentMethod(storeID uuid.UUID, name, provider string) (*PaymentMethod, error) {
	if storeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_STORE", "Store ID cannot be empty")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Payment method name cannot be empty")
	}

	return &PaymentMethod{
		BaseEntity: shared.NewBaseEntity(),
		StoreID:    storeID,
		Name:       name,
		Provider:   provider,
		Active:     true,
	}, nil
}
