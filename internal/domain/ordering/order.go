package ordering

import (
	"fmt"
	"time"

	"github.com/commerce/backend/internal/domain/pricing"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the aggregate root for the order lifecycle. All mutation goes
// through state-machine-governed operations; a guard failure returns a
// DomainError and leaves the aggregate untouched.
//
// Monetary invariant, re-established by ApplyPricing and checked by
// TotalsConsistent: TotalAmount == SubtotalAmount + TaxAmount +
// ShippingAmount - DiscountAmount.
type Order struct {
	shared.StoreAggregateRoot
	OrderNumber       string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_orders_store_number,priority:2"`
	UserID            uuid.UUID            `gorm:"type:uuid;not null;index"`
	BillingAddressID  uuid.UUID            `gorm:"type:uuid;not null"`
	ShippingAddressID uuid.UUID            `gorm:"type:uuid;not null"`
	PaymentMethodID   uuid.UUID            `gorm:"type:uuid;not null"`
	ShippingMethodID  uuid.UUID            `gorm:"type:uuid;not null"`
	Currency          valueobject.Currency `gorm:"type:varchar(3);not null"`

	SubtotalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	ShippingAmount decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	PaidAmount     decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`

	Status            OrderStatus       `gorm:"type:varchar(20);not null;index"`
	PaymentStatus     PaymentStatus     `gorm:"type:varchar(20);not null;index"`
	FulfillmentStatus FulfillmentStatus `gorm:"type:varchar(20);not null"`

	Items     []OrderItem     `gorm:"foreignKey:OrderID;references:ID"`
	Discounts []OrderDiscount `gorm:"foreignKey:OrderID;references:ID"`
	Taxes     []OrderTax      `gorm:"foreignKey:OrderID;references:ID"`
	Notes     []OrderNote     `gorm:"foreignKey:OrderID;references:ID"`
	Refunds   []OrderRefund   `gorm:"foreignKey:OrderID;references:ID"`
	Shipments []OrderShipment `gorm:"foreignKey:OrderID;references:ID"`

	ConfirmedAt  *time.Time `gorm:"type:timestamp"`
	ShippedAt    *time.Time `gorm:"type:timestamp"`
	DeliveredAt  *time.Time `gorm:"type:timestamp"`
	CompletedAt  *time.Time `gorm:"type:timestamp"`
	CancelledAt  *time.Time `gorm:"type:timestamp"`
	CancelReason string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new order in the pending/unpaid/unfulfilled state
func NewOrder(storeID uuid.UUID, orderNumber string, userID, billingAddressID, shippingAddressID, paymentMethodID, shippingMethodID uuid.UUID, currency valueobject.Currency) (*Order, error) {
	if orderNumber == "" {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot be empty")
	}
	if len(orderNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number cannot exceed 50 characters")
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if billingAddressID == uuid.Nil || shippingAddressID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Billing and shipping addresses are required")
	}
	if paymentMethodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is required")
	}
	if shippingMethodID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SHIPPING_METHOD", "Shipping method is required")
	}
	if !currency.IsValid() {
		return nil, shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}

	order := &Order{
		StoreAggregateRoot: shared.NewStoreAggregateRoot(storeID),
		OrderNumber:        orderNumber,
		UserID:             userID,
		BillingAddressID:   billingAddressID,
		ShippingAddressID:  shippingAddressID,
		PaymentMethodID:    paymentMethodID,
		ShippingMethodID:   shippingMethodID,
		Currency:           currency,
		SubtotalAmount:     decimal.Zero,
		DiscountAmount:     decimal.Zero,
		TaxAmount:          decimal.Zero,
		ShippingAmount:     decimal.Zero,
		TotalAmount:        decimal.Zero,
		PaidAmount:         decimal.Zero,
		Status:             OrderStatusPending,
		PaymentStatus:      PaymentStatusUnpaid,
		FulfillmentStatus:  FulfillmentStatusUnfulfilled,
		Items:              make([]OrderItem, 0),
		Discounts:          make([]OrderDiscount, 0),
		Taxes:              make([]OrderTax, 0),
		Notes:              make([]OrderNote, 0),
		Refunds:            make([]OrderRefund, 0),
		Shipments:          make([]OrderShipment, 0),
	}

	return order, nil
}

// SetItems replaces the full item set. Items are individually immutable;
// line changes always arrive as a complete replacement. Only allowed
// while the order is pending.
func (o *Order) SetItems(items []OrderItem) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_STATE", "Cannot change items on a non-pending order")
	}
	if len(items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Order must have at least one item")
	}

	seen := make(map[uuid.UUID]bool, len(items))
	for i := range items {
		if seen[items[i].ProductID] {
			return shared.NewDomainError("DUPLICATE_PRODUCT", "Product appears more than once in the item set")
		}
		seen[items[i].ProductID] = true
		items[i].OrderID = o.ID
	}

	o.Items = items
	o.Touch()

	return nil
}

// ApplyPricing persists a pricing breakdown onto the order: the five
// monetary fields plus the discount and tax line snapshots. Called after
// every mutation that changes items, discounts or shipping selection so
// totals are never stale.
func (o *Order) ApplyPricing(b *pricing.Breakdown) error {
	if b == nil {
		return shared.NewDomainError("INVALID_PRICING", "Pricing breakdown is required")
	}
	if b.Subtotal.IsNegative() || b.DiscountAmount.IsNegative() || b.TaxAmount.IsNegative() || b.ShippingAmount.IsNegative() {
		return shared.NewDomainError("INVALID_PRICING", "Monetary amounts cannot be negative")
	}

	o.SubtotalAmount = b.Subtotal
	o.DiscountAmount = b.DiscountAmount
	o.TaxAmount = b.TaxAmount
	o.ShippingAmount = b.ShippingAmount
	o.TotalAmount = b.Subtotal.Add(b.TaxAmount).Add(b.ShippingAmount).Sub(b.DiscountAmount)

	o.Discounts = make([]OrderDiscount, 0, len(b.AppliedDiscounts))
	for _, d := range b.AppliedDiscounts {
		o.Discounts = append(o.Discounts, OrderDiscount{
			BaseEntity: shared.NewBaseEntity(),
			OrderID:    o.ID,
			DiscountID: d.DiscountID,
			Code:       d.Code,
			Type:       d.Type,
			Value:      d.Value,
			Amount:     d.Amount,
		})
	}

	// A zero tax rate means no tax line at all.
	o.Taxes = o.Taxes[:0]
	if b.TaxRate.GreaterThan(decimal.Zero) {
		o.Taxes = append(o.Taxes, OrderTax{
			BaseEntity: shared.NewBaseEntity(),
			OrderID:    o.ID,
			Name:       "tax",
			Rate:       b.TaxRate,
			Amount:     b.TaxAmount,
		})
	}

	o.Touch()

	return nil
}

// TotalsConsistent verifies the monetary invariant
func (o *Order) TotalsConsistent() bool {
	expected := o.SubtotalAmount.Add(o.TaxAmount).Add(o.ShippingAmount).Sub(o.DiscountAmount)
	return o.TotalAmount.Equal(expected)
}

// Confirm transitions pending -> confirmed. Inventory reservation is the
// processing service's side of this transition.
func (o *Order) Confirm(actorID uuid.UUID) error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("PRECONDITION_FAILED", fmt.Sprintf("Cannot confirm order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError("NO_ITEMS", "Cannot confirm order without items")
	}

	now := time.Now()
	o.Status = OrderStatusConfirmed
	o.ConfirmedAt = &now
	o.UpdatedAt = now

	o.appendNote(actorID, NoteKindConfirm, "Order confirmed")
	o.AddDomainEvent(NewOrderConfirmedEvent(o))

	return nil
}

// BeginProcessing transitions confirmed -> processing
func (o *Order) BeginProcessing(actorID uuid.UUID) error {
	if !o.Status.CanTransitionTo(OrderStatusProcessing) {
		return shared.NewDomainError("PRECONDITION_FAILED", fmt.Sprintf("Cannot start processing order in %s status", o.Status))
	}

	o.Status = OrderStatusProcessing
	o.Touch()

	o.appendNote(actorID, NoteKindProcess, "Order processing started")
	o.AddDomainEvent(NewOrderProcessingEvent(o))

	return nil
}

// Cancel transitions a not-yet-shipped order to cancelled. Whether a
// reservation needs releasing travels on the event: a pending order
// never reserved anything.
func (o *Order) Cancel(actorID uuid.UUID, reason string) error {
	switch o.Status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing:
	default:
		return shared.NewDomainError("PRECONDITION_FAILED", fmt.Sprintf("Cannot cancel order in %s status", o.Status))
	}
	if reason == "" {
		reason = "Cancelled"
	}

	wasReserved := o.Status != OrderStatusPending
	now := time.Now()
	o.Status = OrderStatusCancelled
	o.FulfillmentStatus = FulfillmentStatusCancelled
	o.CancelledAt = &now
	o.CancelReason = reason
	o.UpdatedAt = now

	o.appendNote(actorID, NoteKindCancel, fmt.Sprintf("Order cancelled: %s", reason))
	o.AddDomainEvent(NewOrderCancelledEvent(o, wasReserved))

	return nil
}

// RecordPayment applies a payment reported by the payments collaborator.
// The payment is money in the order's currency; any other currency is
// rejected. Payment status moves unpaid -> partially_paid -> paid as the
// paid amount approaches the total.
func (o *Order) RecordPayment(actorID uuid.UUID, payment valueobject.Money) error {
	if payment.Currency() != o.Currency {
		return shared.NewDomainError("CURRENCY_MISMATCH", fmt.Sprintf("Payment currency %s does not match order currency %s", payment.Currency(), o.Currency))
	}
	if !payment.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if o.PaymentStatus != PaymentStatusUnpaid && o.PaymentStatus != PaymentStatusPartiallyPaid {
		return shared.NewDomainError("PRECONDITION_FAILED", fmt.Sprintf("Cannot record payment in %s payment status", o.PaymentStatus))
	}
	if o.Status.IsTerminal() {
		return shared.NewDomainError("PRECONDITION_FAILED", fmt.Sprintf("Cannot record payment on %s order", o.Status))
	}

	paid, err := valueobject.NewMoney(o.PaidAmount, o.Currency)
	if err != nil {
		return err
	}
	paid, err = paid.Add(payment)
	if err != nil {
		return err
	}
	o.PaidAmount = paid.Amount()
	if o.PaidAmount.GreaterThanOrEqual(o.TotalAmount) {
		o.PaymentStatus = PaymentStatusPaid
	} else {
		o.PaymentStatus = PaymentStatusPartiallyPaid
	}
	o.Touch()

	o.appendNote(actorID, NoteKindPayment, fmt.Sprintf("Payment of %s recorded", payment))
	o.AddDomainEvent(NewOrderPaymentRecordedEvent(o, payment.Amount()))

	return nil
}

// Ship transitions a paid confirmed/processing order to shipped and
// records the carrier handoff. Reservation consumption is the
// processing service's side of this transition.
func (o *Order) Ship(actorID uuid.UUID, trackingNumber, carrier string) error {
	if o.Status != OrderStatusConfirmed && o.Status != OrderStatusProcessing {
		return shared.NewDomainError("PRECONDITION_FAILED", fmt.Sprintf("Cannot ship order in %s status", o.Status))
	}
	if o.PaymentStatus != PaymentStatusPaid {
		return shared.NewDomainError("PRECONDITION_FAILED", "Cannot ship an order that is not fully paid")
	}
	if trackingNumber == "" {
		return shared.NewDomainError("INVALID_TRACKING", "Tracking number is required")
	}

	now := time.Now()
	o.Status = OrderStatusShipped
	o.FulfillmentStatus = FulfillmentStatusFulfilled
	o.ShippedAt = &now
	o.UpdatedAt = now

	shipment := NewOrderShipment(o.ID, trackingNumber, carrier)
	o.Shipments = append(o.Shipments, *shipment)

	o.appendNote(actorID, NoteKindShip, fmt.Sprintf("Order shipped via %s (%s)", carrier, trackingNumber))
	o.AddDomainEvent(NewOrderShippedEvent(o, trackingNumber, carrier))

	return nil
}

// Deliver transitions shipped -> delivered
func (o *Order) Deliver(actorID uuid.UUID) error {
	if o.Status != OrderStatusShipped {
		return shared.NewDomainError("PRECONDITION_FAILED", fmt.Sprintf("Cannot deliver order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusDelivered
	o.DeliveredAt = &now
	o.UpdatedAt = now

	o.appendNote(actorID, NoteKindDeliver, "Order delivered")
	o.AddDomainEvent(NewOrderDeliveredEvent(o))

	return nil
}

// Complete transitions delivered -> completed
func (o *Order) Complete(actorID uuid.UUID) error {
	if o.Status != OrderStatusDelivered {
		return shared.NewDomainError("PRECONDITION_FAILED", fmt.Sprintf("Cannot complete order in %s status", o.Status))
	}

	now := time.Now()
	o.Status = OrderStatusCompleted
	o.CompletedAt = &now
	o.UpdatedAt = now

	o.appendNote(actorID, NoteKindComplete, "Order completed")
	o.AddDomainEvent(NewOrderCompletedEvent(o))

	return nil
}

// TotalRefunded returns the running sum of recorded refunds
func (o *Order) TotalRefunded() decimal.Decimal {
	total := decimal.Zero
	for _, r := range o.Refunds {
		total = total.Add(r.Amount)
	}
	return total
}

// Refund records a refund against a shipped, delivered or completed
// order. The refund is money in the order's currency. Payment status
// becomes refunded once refunds cover the total, partially_refunded
// before that; a fully refunded order also moves its status to the
// refunded terminal state.
func (o *Order) Refund(actorID uuid.UUID, refundMoney valueobject.Money, reason string) error {
	switch o.Status {
	case OrderStatusShipped, OrderStatusDelivered, OrderStatusCompleted:
	default:
		return shared.NewDomainError("PRECONDITION_FAILED", fmt.Sprintf("Cannot refund order in %s status", o.Status))
	}
	if !o.PaymentStatus.IsRefundable() {
		return shared.NewDomainError("PRECONDITION_FAILED", fmt.Sprintf("Cannot refund order in %s payment status", o.PaymentStatus))
	}
	if refundMoney.Currency() != o.Currency {
		return shared.NewDomainError("CURRENCY_MISMATCH", fmt.Sprintf("Refund currency %s does not match order currency %s", refundMoney.Currency(), o.Currency))
	}
	if !refundMoney.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount must be positive")
	}
	amount := refundMoney.Amount()
	if o.TotalRefunded().Add(amount).GreaterThan(o.TotalAmount) {
		return shared.NewDomainError("INVALID_AMOUNT", "Refund amount exceeds the refundable total")
	}

	refund := NewOrderRefund(o.ID, actorID, amount, reason)
	o.Refunds = append(o.Refunds, *refund)

	if o.TotalRefunded().GreaterThanOrEqual(o.TotalAmount) {
		o.PaymentStatus = PaymentStatusRefunded
		o.Status = OrderStatusRefunded
	} else {
		o.PaymentStatus = PaymentStatusPartiallyRefunded
	}
	o.Touch()

	o.appendNote(actorID, NoteKindRefund, fmt.Sprintf("Refund of %s: %s", refundMoney, reason))
	o.AddDomainEvent(NewOrderRefundedEvent(o, amount, reason))

	return nil
}

// MarkFailed moves any non-terminal order to the failed state
func (o *Order) MarkFailed(actorID uuid.UUID, reason string) error {
	if !o.Status.CanTransitionTo(OrderStatusFailed) {
		return shared.NewDomainError("PRECONDITION_FAILED", fmt.Sprintf("Cannot fail order in %s status", o.Status))
	}

	o.Status = OrderStatusFailed
	o.Touch()

	o.appendNote(actorID, NoteKindFail, fmt.Sprintf("Order failed: %s", reason))
	o.AddDomainEvent(NewOrderFailedEvent(o, reason))

	return nil
}

// appendNote records an immutable audit entry for a transition
func (o *Order) appendNote(actorID uuid.UUID, kind NoteKind, content string) {
	note := NewOrderNote(o.ID, actorID, kind, content)
	o.Notes = append(o.Notes, *note)
}

// IsPending returns true if the order is pending
func (o *Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// IsCancelled returns true if the order is cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// IsTerminal returns true if the order is in a terminal state
func (o *Order) IsTerminal() bool {
	return o.Status.IsTerminal()
}

// GetItemByProduct returns the item for a product ID, or nil
func (o *Order) GetItemByProduct(productID uuid.UUID) *OrderItem {
	for idx := range o.Items {
		if o.Items[idx].ProductID == productID {
			return &o.Items[idx]
		}
	}
	return nil
}

// TotalQuantity returns the sum of all item quantities
func (o *Order) TotalQuantity() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Quantity)
	}
	return total
}
