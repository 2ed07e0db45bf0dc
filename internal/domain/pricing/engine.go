package pricing

import (
	"fmt"
	"time"

	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/domain/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is the pricing engine's view of one order line
type LineItem struct {
	ProductID  uuid.UUID
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	UnitWeight decimal.Decimal
}

// AppliedDiscount snapshots one discount's contribution to an order
type AppliedDiscount struct {
	DiscountID uuid.UUID
	Code       string
	Type       store.DiscountType
	Value      decimal.Decimal
	Amount     decimal.Decimal
}

// Breakdown is the complete monetary result of pricing an order.
// TotalAmount always equals Subtotal + TaxAmount + ShippingAmount - DiscountAmount.
type Breakdown struct {
	Subtotal         decimal.Decimal
	DiscountAmount   decimal.Decimal
	TaxAmount        decimal.Decimal
	TaxRate          decimal.Decimal
	ShippingAmount   decimal.Decimal
	TotalAmount      decimal.Decimal
	TotalWeight      decimal.Decimal
	AppliedDiscounts []AppliedDiscount
}

// Engine computes order totals from line items and store configuration.
// It is pure: no storage access, no mutation of its inputs.
type Engine struct {
	now func() time.Time
}

// EngineOption is a functional option for configuring the Engine
type EngineOption func(*Engine)

// WithClock overrides the engine's clock (discount validity windows)
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a new pricing engine
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Price computes the full monetary breakdown for an order.
//
// Discounts invalid or expired at pricing time are silently excluded:
// recomputes must not fail an already-accepted order because a code
// lapsed. Submission-time code validation is the caller's concern.
func (e *Engine) Price(items []LineItem, discounts []store.Discount, taxRate decimal.Decimal, method *store.ShippingMethod) (*Breakdown, error) {
	if len(items) == 0 {
		return nil, shared.NewDomainError("NO_ITEMS", "Cannot price an order without items")
	}
	if taxRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}

	subtotal := decimal.Zero
	totalWeight := decimal.Zero
	for i, item := range items {
		if item.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, shared.NewDomainError("INVALID_QUANTITY", fmt.Sprintf("Quantity at index %d must be positive", i))
		}
		if item.UnitPrice.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PRICE", fmt.Sprintf("Unit price at index %d cannot be negative", i))
		}
		if item.UnitWeight.IsNegative() {
			return nil, shared.NewDomainError("INVALID_WEIGHT", fmt.Sprintf("Unit weight at index %d cannot be negative", i))
		}
		subtotal = subtotal.Add(item.Quantity.Mul(item.UnitPrice))
		totalWeight = totalWeight.Add(item.Quantity.Mul(item.UnitWeight))
	}

	now := e.now()
	discountAmount := decimal.Zero
	applied := make([]AppliedDiscount, 0, len(discounts))
	for i := range discounts {
		d := &discounts[i]
		if !d.IsValidAt(now) {
			continue
		}
		amount := d.AmountFor(subtotal)
		if amount.IsZero() {
			continue
		}
		discountAmount = discountAmount.Add(amount)
		applied = append(applied, AppliedDiscount{
			DiscountID: d.ID,
			Code:       d.Code,
			Type:       d.Type,
			Value:      d.Value,
			Amount:     amount,
		})
	}
	// Stacked codes can overshoot; totals never go negative.
	if discountAmount.GreaterThan(subtotal) {
		discountAmount = subtotal
	}

	taxable := subtotal.Sub(discountAmount)
	taxAmount := decimal.Zero
	if taxRate.GreaterThan(decimal.Zero) {
		taxAmount = taxable.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
	}

	shippingAmount := decimal.Zero
	if method != nil {
		shippingAmount = method.CostFor(subtotal, totalWeight)
		if shippingAmount.IsNegative() {
			return nil, shared.NewDomainError("INVALID_SHIPPING_COST", "Shipping cost cannot be negative")
		}
	}

	return &Breakdown{
		Subtotal:         subtotal,
		DiscountAmount:   discountAmount,
		TaxAmount:        taxAmount,
		TaxRate:          taxRate,
		ShippingAmount:   shippingAmount,
		TotalAmount:      subtotal.Add(taxAmount).Add(shippingAmount).Sub(discountAmount),
		TotalWeight:      totalWeight,
		AppliedDiscounts: applied,
	}, nil
}
