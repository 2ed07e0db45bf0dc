package ordering

import (
	"time"

	"github.com/commerce/backend/internal/domain/ordering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest carries everything needed to create a pending order
type CreateOrderRequest struct {
	UserID            uuid.UUID        `json:"user_id" validate:"required"`
	BillingAddressID  uuid.UUID        `json:"billing_address_id" validate:"required"`
	ShippingAddressID uuid.UUID        `json:"shipping_address_id" validate:"required"`
	PaymentMethodID   uuid.UUID        `json:"payment_method_id" validate:"required"`
	ShippingMethodID  uuid.UUID        `json:"shipping_method_id" validate:"required"`
	Currency          string           `json:"currency" validate:"omitempty,len=3,uppercase"`
	Items             []OrderItemInput `json:"items" validate:"required,min=1,dive"`
	DiscountCodes     []string         `json:"discount_codes" validate:"omitempty,dive,min=1,max=50"`
	// IdempotencyKey deduplicates retried create calls when set
	IdempotencyKey string `json:"idempotency_key" validate:"omitempty,max=100"`
}

// OrderItemInput is one requested line in a create call
type OrderItemInput struct {
	ProductID uuid.UUID       `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"required"`
}

// CancelOrderRequest carries the cancellation reason
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// ShipOrderRequest carries the carrier handoff details
type ShipOrderRequest struct {
	TrackingNumber string `json:"tracking_number" validate:"required,min=1,max=100"`
	Carrier        string `json:"carrier" validate:"required,min=1,max=100"`
}

// RecordPaymentRequest carries a payment reported by the payment
// provider. Currency is the provider-reported settlement currency;
// empty means the order's own currency.
type RecordPaymentRequest struct {
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Currency string          `json:"currency" validate:"omitempty,uppercase,len=3"`
}

// RefundOrderRequest carries a refund to record against an order.
// Currency is the refund settlement currency; empty means the order's
// own currency.
type RefundOrderRequest struct {
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Currency string          `json:"currency" validate:"omitempty,uppercase,len=3"`
	Reason   string          `json:"reason" validate:"omitempty,max=500"`
}

// ListOrdersFilter filters and paginates a user's order listing
type ListOrdersFilter struct {
	UserID   uuid.UUID `json:"user_id" validate:"required"`
	Page     int       `json:"page"`
	PageSize int       `json:"page_size"`
}

// OrderItemResponse is the read model for one order line
type OrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// OrderDiscountResponse is the read model for an applied discount
type OrderDiscountResponse struct {
	Code   string          `json:"code"`
	Type   string          `json:"type"`
	Value  decimal.Decimal `json:"value"`
	Amount decimal.Decimal `json:"amount"`
}

// OrderNoteResponse is the read model for one audit note
type OrderNoteResponse struct {
	ActorID   uuid.UUID `json:"actor_id"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderRefundResponse is the read model for one recorded refund
type OrderRefundResponse struct {
	Amount    decimal.Decimal `json:"amount"`
	Reason    string          `json:"reason"`
	CreatedAt time.Time       `json:"created_at"`
}

// OrderShipmentResponse is the read model for one carrier handoff
type OrderShipmentResponse struct {
	TrackingNumber string    `json:"tracking_number"`
	Carrier        string    `json:"carrier"`
	CreatedAt      time.Time `json:"created_at"`
}

// OrderResponse is the full read model for an order
type OrderResponse struct {
	ID                uuid.UUID               `json:"id"`
	StoreID           uuid.UUID               `json:"store_id"`
	OrderNumber       string                  `json:"order_number"`
	UserID            uuid.UUID               `json:"user_id"`
	Currency          string                  `json:"currency"`
	SubtotalAmount    decimal.Decimal         `json:"subtotal_amount"`
	DiscountAmount    decimal.Decimal         `json:"discount_amount"`
	TaxAmount         decimal.Decimal         `json:"tax_amount"`
	ShippingAmount    decimal.Decimal         `json:"shipping_amount"`
	TotalAmount       decimal.Decimal         `json:"total_amount"`
	PaidAmount        decimal.Decimal         `json:"paid_amount"`
	RefundedAmount    decimal.Decimal         `json:"refunded_amount"`
	Status            string                  `json:"status"`
	PaymentStatus     string                  `json:"payment_status"`
	FulfillmentStatus string                  `json:"fulfillment_status"`
	Items             []OrderItemResponse     `json:"items"`
	Discounts         []OrderDiscountResponse `json:"discounts,omitempty"`
	Notes             []OrderNoteResponse     `json:"notes,omitempty"`
	Refunds           []OrderRefundResponse   `json:"refunds,omitempty"`
	Shipments         []OrderShipmentResponse `json:"shipments,omitempty"`
	ConfirmedAt       *time.Time              `json:"confirmed_at,omitempty"`
	ShippedAt         *time.Time              `json:"shipped_at,omitempty"`
	DeliveredAt       *time.Time              `json:"delivered_at,omitempty"`
	CompletedAt       *time.Time              `json:"completed_at,omitempty"`
	CancelledAt       *time.Time              `json:"cancelled_at,omitempty"`
	CancelReason      string                  `json:"cancel_reason,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
	Version           int                     `json:"version"`
}

// OrderListItemResponse is the trimmed read model for list views
type OrderListItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	OrderNumber string          `json:"order_number"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	ItemCount   int             `json:"item_count"`
	CreatedAt   time.Time       `json:"created_at"`
}

// OperationResult is the outcome of a workflow operation. Business-rule
// failures (guard violations, insufficient stock, invalid input) land in
// Errors with Success false; only infrastructure failures surface as Go
// errors from the service methods.
type OperationResult struct {
	Success bool           `json:"success"`
	Order   *OrderResponse `json:"order,omitempty"`
	Errors  []string       `json:"errors,omitempty"`
}

func successResult(order *ordering.Order) *OperationResult {
	resp := ToOrderResponse(order)
	return &OperationResult{Success: true, Order: &resp}
}

func failureResult(messages ...string) *OperationResult {
	return &OperationResult{Success: false, Errors: messages}
}

// ToOrderResponse converts a domain Order to its response DTO
func ToOrderResponse(order *ordering.Order) OrderResponse {
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			SKU:         item.SKU,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}

	discounts := make([]OrderDiscountResponse, 0, len(order.Discounts))
	for _, d := range order.Discounts {
		discounts = append(discounts, OrderDiscountResponse{
			Code:   d.Code,
			Type:   string(d.Type),
			Value:  d.Value,
			Amount: d.Amount,
		})
	}

	notes := make([]OrderNoteResponse, 0, len(order.Notes))
	for _, n := range order.Notes {
		notes = append(notes, OrderNoteResponse{
			ActorID:   n.ActorID,
			Kind:      string(n.Kind),
			Content:   n.Content,
			CreatedAt: n.CreatedAt,
		})
	}

	refunds := make([]OrderRefundResponse, 0, len(order.Refunds))
	for _, r := range order.Refunds {
		refunds = append(refunds, OrderRefundResponse{
			Amount:    r.Amount,
			Reason:    r.Reason,
			CreatedAt: r.CreatedAt,
		})
	}

	shipments := make([]OrderShipmentResponse, 0, len(order.Shipments))
	for _, s := range order.Shipments {
		shipments = append(shipments, OrderShipmentResponse{
			TrackingNumber: s.TrackingNumber,
			Carrier:        s.Carrier,
			CreatedAt:      s.CreatedAt,
		})
	}

	return OrderResponse{
		ID:                order.ID,
		StoreID:           order.StoreID,
		OrderNumber:       order.OrderNumber,
		UserID:            order.UserID,
		Currency:          string(order.Currency),
		SubtotalAmount:    order.SubtotalAmount,
		DiscountAmount:    order.DiscountAmount,
		TaxAmount:         order.TaxAmount,
		ShippingAmount:    order.ShippingAmount,
		TotalAmount:       order.TotalAmount,
		PaidAmount:        order.PaidAmount,
		RefundedAmount:    order.TotalRefunded(),
		Status:            string(order.Status),
		PaymentStatus:     string(order.PaymentStatus),
		FulfillmentStatus: string(order.FulfillmentStatus),
		Items:             items,
		Discounts:         discounts,
		Notes:             notes,
		Refunds:           refunds,
		Shipments:         shipments,
		ConfirmedAt:       order.ConfirmedAt,
		ShippedAt:         order.ShippedAt,
		DeliveredAt:       order.DeliveredAt,
		CompletedAt:       order.CompletedAt,
		CancelledAt:       order.CancelledAt,
		CancelReason:      order.CancelReason,
		CreatedAt:         order.CreatedAt,
		UpdatedAt:         order.UpdatedAt,
		Version:           order.Version,
	}
}

// ToOrderListItemResponse converts a domain Order to its list read model
func ToOrderListItemResponse(order *ordering.Order) OrderListItemResponse {
	return OrderListItemResponse{
		ID:          order.ID,
		OrderNumber: order.OrderNumber,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
		ItemCount:   len(order.Items),
		CreatedAt:   order.CreatedAt,
	}
}
