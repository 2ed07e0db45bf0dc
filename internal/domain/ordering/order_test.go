package ordering

import (
	"testing"

	"github.com/commerce/backend/internal/domain/pricing"
	"github.com/commerce/backend/internal/domain/shared"
	"github.com/commerce/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(t *testing.T) *Order {
	t.Helper()

	order, err := NewOrder(
		uuid.New(), "ORD-2026-000042", uuid.New(),
		uuid.New(), uuid.New(), uuid.New(), uuid.New(),
		valueobject.USD,
	)
	require.NoError(t, err)

	item, err := NewOrderItem(order.ID, uuid.New(), "Widget", "WID-001",
		decimal.NewFromInt(2), decimal.NewFromInt(100), decimal.NewFromFloat(0.5))
	require.NoError(t, err)
	require.NoError(t, order.SetItems([]OrderItem{*item}))

	require.NoError(t, order.ApplyPricing(&pricing.Breakdown{
		Subtotal:       decimal.NewFromInt(200),
		DiscountAmount: decimal.NewFromInt(20),
		TaxAmount:      decimal.NewFromInt(9),
		TaxRate:        decimal.NewFromInt(5),
		ShippingAmount: decimal.NewFromInt(10),
		TotalAmount:    decimal.NewFromInt(199),
		TotalWeight:    decimal.NewFromInt(1),
	}))
	order.ClearDomainEvents()

	return order
}

func payAndShip(t *testing.T, order *Order, actorID uuid.UUID) {
	t.Helper()
	require.NoError(t, order.Confirm(actorID))
	require.NoError(t, order.RecordPayment(actorID, valueobject.NewMoneyUSD(order.TotalAmount)))
	require.NoError(t, order.Ship(actorID, "TRACK-123", "UPS"))
}

func usd(amount int64) valueobject.Money {
	return valueobject.NewMoneyUSD(decimal.NewFromInt(amount))
}

func TestNewOrder(t *testing.T) {
	storeID := uuid.New()

	tests := []struct {
		name        string
		orderNumber string
		userID      uuid.UUID
		currency    valueobject.Currency
		wantErr     bool
		errCode     string
	}{
		{
			name:        "valid order",
			orderNumber: "ORD-2026-000001",
			userID:      uuid.New(),
			currency:    valueobject.USD,
			wantErr:     false,
		},
		{
			name:        "empty order number",
			orderNumber: "",
			userID:      uuid.New(),
			currency:    valueobject.USD,
			wantErr:     true,
			errCode:     "INVALID_ORDER_NUMBER",
		},
		{
			name:        "missing user",
			orderNumber: "ORD-2026-000001",
			userID:      uuid.Nil,
			currency:    valueobject.USD,
			wantErr:     true,
			errCode:     "INVALID_USER",
		},
		{
			name:        "bad currency",
			orderNumber: "ORD-2026-000001",
			userID:      uuid.New(),
			currency:    valueobject.Currency("dollars"),
			wantErr:     true,
			errCode:     "INVALID_CURRENCY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := NewOrder(storeID, tt.orderNumber, tt.userID,
				uuid.New(), uuid.New(), uuid.New(), uuid.New(), tt.currency)

			if tt.wantErr {
				require.Error(t, err)
				var domainErr *shared.DomainError
				require.ErrorAs(t, err, &domainErr)
				assert.Equal(t, tt.errCode, domainErr.Code)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, OrderStatusPending, order.Status)
			assert.Equal(t, PaymentStatusUnpaid, order.PaymentStatus)
			assert.Equal(t, FulfillmentStatusUnfulfilled, order.FulfillmentStatus)
			assert.Equal(t, storeID, order.StoreID)
			assert.True(t, order.TotalAmount.IsZero())
			assert.Equal(t, 1, order.Version)
		})
	}
}

func TestOrder_SetItems(t *testing.T) {
	order := newTestOrder(t)

	t.Run("rejects empty item set", func(t *testing.T) {
		err := order.SetItems([]OrderItem{})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_ITEMS", domainErr.Code)
	})

	t.Run("rejects duplicate products", func(t *testing.T) {
		productID := uuid.New()
		a, err := NewOrderItem(order.ID, productID, "Widget", "WID-001",
			decimal.NewFromInt(1), decimal.NewFromInt(10), decimal.Zero)
		require.NoError(t, err)
		b, err := NewOrderItem(order.ID, productID, "Widget", "WID-001",
			decimal.NewFromInt(2), decimal.NewFromInt(10), decimal.Zero)
		require.NoError(t, err)

		err = order.SetItems([]OrderItem{*a, *b})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUPLICATE_PRODUCT", domainErr.Code)
	})

	t.Run("replaces the item set wholesale", func(t *testing.T) {
		item, err := NewOrderItem(order.ID, uuid.New(), "Gadget", "GAD-001",
			decimal.NewFromInt(3), decimal.NewFromInt(25), decimal.Zero)
		require.NoError(t, err)

		require.NoError(t, order.SetItems([]OrderItem{*item}))
		require.Len(t, order.Items, 1)
		assert.Equal(t, "GAD-001", order.Items[0].SKU)
		assert.Equal(t, order.ID, order.Items[0].OrderID)
	})

	t.Run("rejected after confirmation", func(t *testing.T) {
		confirmed := newTestOrder(t)
		require.NoError(t, confirmed.Confirm(uuid.New()))

		item, err := NewOrderItem(confirmed.ID, uuid.New(), "Gadget", "GAD-001",
			decimal.NewFromInt(1), decimal.NewFromInt(25), decimal.Zero)
		require.NoError(t, err)

		err = confirmed.SetItems([]OrderItem{*item})
		require.Error(t, err)
	})
}

func TestOrder_ApplyPricing(t *testing.T) {
	order := newTestOrder(t)

	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(199)))
	assert.True(t, order.TotalsConsistent())
	require.Len(t, order.Taxes, 1)
	assert.True(t, order.Taxes[0].Rate.Equal(decimal.NewFromInt(5)))

	t.Run("zero tax rate produces no tax line", func(t *testing.T) {
		require.NoError(t, order.ApplyPricing(&pricing.Breakdown{
			Subtotal:       decimal.NewFromInt(200),
			DiscountAmount: decimal.Zero,
			TaxAmount:      decimal.Zero,
			TaxRate:        decimal.Zero,
			ShippingAmount: decimal.NewFromInt(10),
			TotalAmount:    decimal.NewFromInt(210),
		}))
		assert.Empty(t, order.Taxes)
		assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(210)))
		assert.True(t, order.TotalsConsistent())
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		err := order.ApplyPricing(&pricing.Breakdown{
			Subtotal:       decimal.NewFromInt(-1),
			DiscountAmount: decimal.Zero,
			TaxAmount:      decimal.Zero,
			ShippingAmount: decimal.Zero,
		})
		require.Error(t, err)
	})

	t.Run("rejects nil breakdown", func(t *testing.T) {
		require.Error(t, order.ApplyPricing(nil))
	})
}

func TestOrder_Lifecycle(t *testing.T) {
	actorID := uuid.New()

	t.Run("happy path to completed", func(t *testing.T) {
		order := newTestOrder(t)

		require.NoError(t, order.Confirm(actorID))
		assert.Equal(t, OrderStatusConfirmed, order.Status)
		require.NotNil(t, order.ConfirmedAt)

		require.NoError(t, order.BeginProcessing(actorID))
		assert.Equal(t, OrderStatusProcessing, order.Status)

		require.NoError(t, order.RecordPayment(actorID, valueobject.NewMoneyUSD(order.TotalAmount)))
		assert.Equal(t, PaymentStatusPaid, order.PaymentStatus)

		require.NoError(t, order.Ship(actorID, "TRACK-123", "UPS"))
		assert.Equal(t, OrderStatusShipped, order.Status)
		assert.Equal(t, FulfillmentStatusFulfilled, order.FulfillmentStatus)
		require.Len(t, order.Shipments, 1)
		assert.Equal(t, "TRACK-123", order.Shipments[0].TrackingNumber)

		require.NoError(t, order.Deliver(actorID))
		assert.Equal(t, OrderStatusDelivered, order.Status)

		require.NoError(t, order.Complete(actorID))
		assert.Equal(t, OrderStatusCompleted, order.Status)
		require.NotNil(t, order.CompletedAt)

		// every transition leaves an audit note
		kinds := make([]NoteKind, 0, len(order.Notes))
		for _, n := range order.Notes {
			kinds = append(kinds, n.Kind)
		}
		assert.Equal(t, []NoteKind{
			NoteKindConfirm, NoteKindProcess, NoteKindPayment,
			NoteKindShip, NoteKindDeliver, NoteKindComplete,
		}, kinds)
	})

	t.Run("invalid transitions are rejected and leave no trace", func(t *testing.T) {
		order := newTestOrder(t)

		err := order.Ship(actorID, "TRACK-123", "UPS")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRECONDITION_FAILED", domainErr.Code)

		assert.Equal(t, OrderStatusPending, order.Status)
		assert.Empty(t, order.Notes)
		assert.Empty(t, order.GetDomainEvents())
	})

	t.Run("confirm requires items", func(t *testing.T) {
		order, err := NewOrder(uuid.New(), "ORD-2026-000099", uuid.New(),
			uuid.New(), uuid.New(), uuid.New(), uuid.New(), valueobject.USD)
		require.NoError(t, err)

		err = order.Confirm(actorID)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_ITEMS", domainErr.Code)
	})

	t.Run("terminal states reject everything", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.Cancel(actorID, "changed my mind"))

		assert.Error(t, order.Confirm(actorID))
		assert.Error(t, order.Cancel(actorID, "again"))
		assert.Error(t, order.RecordPayment(actorID, usd(10)))
		assert.Error(t, order.Ship(actorID, "T", "UPS"))
		assert.Error(t, order.MarkFailed(actorID, "late failure"))
	})
}

func TestOrder_Cancel(t *testing.T) {
	actorID := uuid.New()

	t.Run("pending order cancels without a reservation to release", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.Cancel(actorID, "out of budget"))

		assert.Equal(t, OrderStatusCancelled, order.Status)
		assert.Equal(t, FulfillmentStatusCancelled, order.FulfillmentStatus)
		assert.Equal(t, "out of budget", order.CancelReason)
		require.NotNil(t, order.CancelledAt)

		events := order.GetDomainEvents()
		require.Len(t, events, 1)
		cancelled, ok := events[0].(*OrderCancelledEvent)
		require.True(t, ok)
		assert.False(t, cancelled.NeedsRelease)
	})

	t.Run("confirmed order cancels with release", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.Confirm(actorID))
		order.ClearDomainEvents()

		require.NoError(t, order.Cancel(actorID, "customer request"))

		events := order.GetDomainEvents()
		require.Len(t, events, 1)
		cancelled, ok := events[0].(*OrderCancelledEvent)
		require.True(t, ok)
		assert.True(t, cancelled.NeedsRelease)
		require.Len(t, cancelled.Items, 1)
	})

	t.Run("shipped order cannot cancel", func(t *testing.T) {
		order := newTestOrder(t)
		payAndShip(t, order, actorID)

		require.Error(t, order.Cancel(actorID, "too late"))
	})
}

func TestOrder_RecordPayment(t *testing.T) {
	actorID := uuid.New()

	t.Run("partial then full payment", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.Confirm(actorID))

		require.NoError(t, order.RecordPayment(actorID, usd(100)))
		assert.Equal(t, PaymentStatusPartiallyPaid, order.PaymentStatus)
		assert.True(t, order.PaidAmount.Equal(decimal.NewFromInt(100)))

		require.NoError(t, order.RecordPayment(actorID, usd(99)))
		assert.Equal(t, PaymentStatusPaid, order.PaymentStatus)
		assert.True(t, order.PaidAmount.Equal(decimal.NewFromInt(199)))
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		order := newTestOrder(t)

		require.Error(t, order.RecordPayment(actorID, usd(0)))
		require.Error(t, order.RecordPayment(actorID, usd(-5)))
	})

	t.Run("rejects a payment in another currency", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.Confirm(actorID))

		payment, err := valueobject.NewMoney(decimal.NewFromInt(100), valueobject.Currency("EUR"))
		require.NoError(t, err)

		err = order.RecordPayment(actorID, payment)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CURRENCY_MISMATCH", domainErr.Code)
		assert.True(t, order.PaidAmount.IsZero())
	})

	t.Run("fully paid order rejects further payments", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.Confirm(actorID))
		require.NoError(t, order.RecordPayment(actorID, valueobject.NewMoneyUSD(order.TotalAmount)))

		require.Error(t, order.RecordPayment(actorID, usd(1)))
	})
}

func TestOrder_Ship(t *testing.T) {
	actorID := uuid.New()

	t.Run("unpaid order cannot ship", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.Confirm(actorID))

		err := order.Ship(actorID, "TRACK-123", "UPS")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "PRECONDITION_FAILED", domainErr.Code)
		assert.Equal(t, OrderStatusConfirmed, order.Status)
	})

	t.Run("tracking number required", func(t *testing.T) {
		order := newTestOrder(t)
		require.NoError(t, order.Confirm(actorID))
		require.NoError(t, order.RecordPayment(actorID, valueobject.NewMoneyUSD(order.TotalAmount)))

		require.Error(t, order.Ship(actorID, "", "UPS"))
	})
}

func TestOrder_Refund(t *testing.T) {
	actorID := uuid.New()

	t.Run("partial then completing refund", func(t *testing.T) {
		order := newTestOrder(t)
		payAndShip(t, order, actorID)
		require.NoError(t, order.Deliver(actorID))

		require.NoError(t, order.Refund(actorID, usd(99), "damaged item"))
		assert.Equal(t, PaymentStatusPartiallyRefunded, order.PaymentStatus)
		assert.Equal(t, OrderStatusDelivered, order.Status)
		assert.True(t, order.TotalRefunded().Equal(decimal.NewFromInt(99)))

		require.NoError(t, order.Refund(actorID, usd(100), "remainder"))
		assert.Equal(t, PaymentStatusRefunded, order.PaymentStatus)
		assert.Equal(t, OrderStatusRefunded, order.Status)
		assert.True(t, order.TotalRefunded().Equal(order.TotalAmount))
	})

	t.Run("refund sum cannot exceed the total", func(t *testing.T) {
		order := newTestOrder(t)
		payAndShip(t, order, actorID)

		require.NoError(t, order.Refund(actorID, usd(150), "partial"))

		err := order.Refund(actorID, usd(100), "too much")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_AMOUNT", domainErr.Code)
		assert.True(t, order.TotalRefunded().Equal(decimal.NewFromInt(150)))
	})

	t.Run("unpaid order cannot refund", func(t *testing.T) {
		order := newTestOrder(t)
		require.Error(t, order.Refund(actorID, usd(10), "nothing paid"))
	})

	t.Run("rejects a refund in another currency", func(t *testing.T) {
		order := newTestOrder(t)
		payAndShip(t, order, actorID)

		refund, err := valueobject.NewMoney(decimal.NewFromInt(50), valueobject.Currency("EUR"))
		require.NoError(t, err)

		err = order.Refund(actorID, refund, "wrong settlement")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "CURRENCY_MISMATCH", domainErr.Code)
		assert.Empty(t, order.Refunds)
	})

	t.Run("fully refunded order rejects further refunds", func(t *testing.T) {
		order := newTestOrder(t)
		payAndShip(t, order, actorID)
		require.NoError(t, order.Refund(actorID, valueobject.NewMoneyUSD(order.TotalAmount), "full refund"))

		require.Error(t, order.Refund(actorID, usd(1), "again"))
	})
}

func TestOrder_MarkFailed(t *testing.T) {
	actorID := uuid.New()

	order := newTestOrder(t)
	require.NoError(t, order.Confirm(actorID))
	order.ClearDomainEvents()

	require.NoError(t, order.MarkFailed(actorID, "payment provider timeout"))
	assert.Equal(t, OrderStatusFailed, order.Status)
	assert.True(t, order.IsTerminal())

	events := order.GetDomainEvents()
	require.Len(t, events, 1)
	failed, ok := events[0].(*OrderFailedEvent)
	require.True(t, ok)
	assert.Equal(t, "payment provider timeout", failed.Reason)
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderStatusPending, OrderStatusConfirmed, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusShipped, false},
		{OrderStatusConfirmed, OrderStatusProcessing, true},
		{OrderStatusConfirmed, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusShipped, true},
		{OrderStatusProcessing, OrderStatusDelivered, false},
		{OrderStatusShipped, OrderStatusDelivered, true},
		{OrderStatusShipped, OrderStatusRefunded, true},
		{OrderStatusDelivered, OrderStatusCompleted, true},
		{OrderStatusCompleted, OrderStatusRefunded, true},
		{OrderStatusCancelled, OrderStatusConfirmed, false},
		{OrderStatusRefunded, OrderStatusFailed, false},
		{OrderStatusFailed, OrderStatusFailed, false},
		{OrderStatusPending, OrderStatusFailed, true},
		{OrderStatusDelivered, OrderStatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}
