package store

import (
	"testing"
	"time"

	"github.com/commerce/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("creates active store", func(t *testing.T) {
		s, err := NewStore("Acme Outfitters", "acme", valueobject.USD, decimal.NewFromInt(5))
		require.NoError(t, err)

		assert.Equal(t, "Acme Outfitters", s.Name)
		assert.True(t, s.Active)
		assert.Equal(t, 1, s.Version)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewStore("", "acme", valueobject.USD, decimal.Zero)
		assert.Error(t, err)

		_, err = NewStore("Acme", "", valueobject.USD, decimal.Zero)
		assert.Error(t, err)

		_, err = NewStore("Acme", "acme", valueobject.Currency("us"), decimal.Zero)
		assert.Error(t, err)

		_, err = NewStore("Acme", "acme", valueobject.USD, decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestStore_Config(t *testing.T) {
	s, err := NewStore("Acme", "acme", valueobject.USD, decimal.NewFromInt(5))
	require.NoError(t, err)

	discount, err := NewDiscount(s.ID, "SAVE20", DiscountTypeFixed, decimal.NewFromInt(20), nil, nil)
	require.NoError(t, err)
	shipping, err := NewShippingMethod(s.ID, "Standard", ShippingCalculationFixed, decimal.NewFromInt(10))
	require.NoError(t, err)
	payment, err := NewPaymentMethod(s.ID, "Card", "stripe")
	require.NoError(t, err)

	s.Discounts = []Discount{*discount}
	s.ShippingMethods = []ShippingMethod{*shipping}
	s.PaymentMethods = []PaymentMethod{*payment}

	cfg := s.Config()

	t.Run("snapshots store settings", func(t *testing.T) {
		assert.Equal(t, s.ID, cfg.StoreID)
		assert.Equal(t, valueobject.USD, cfg.Currency)
		assert.True(t, cfg.TaxRate.Equal(decimal.NewFromInt(5)))
		assert.True(t, cfg.Active)
	})

	t.Run("finds discount by code", func(t *testing.T) {
		assert.NotNil(t, cfg.FindDiscountByCode("SAVE20"))
		assert.Nil(t, cfg.FindDiscountByCode("NOPE"))
	})

	t.Run("finds shipping method by ID", func(t *testing.T) {
		assert.NotNil(t, cfg.FindShippingMethod(shipping.ID))
		assert.Nil(t, cfg.FindShippingMethod(uuid.New()))
	})

	t.Run("only active payment methods count", func(t *testing.T) {
		assert.True(t, cfg.HasPaymentMethod(payment.ID))
		assert.False(t, cfg.HasPaymentMethod(uuid.New()))

		cfg.PaymentMethods[0].Active = false
		assert.False(t, cfg.HasPaymentMethod(payment.ID))
	})
}

func TestDiscount_IsValidAt(t *testing.T) {
	now := time.Now()
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	tests := []struct {
		name     string
		startsAt *time.Time
		endsAt   *time.Time
		active   bool
		want     bool
	}{
		{"open window", nil, nil, true, true},
		{"inside window", &yesterday, &tomorrow, true, true},
		{"before window", &tomorrow, nil, true, false},
		{"after window", nil, &yesterday, true, false},
		{"inactive", nil, nil, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDiscount(uuid.New(), "CODE", DiscountTypeFixed, decimal.NewFromInt(10), tt.startsAt, tt.endsAt)
			require.NoError(t, err)
			if !tt.active {
				d.Deactivate()
			}
			assert.Equal(t, tt.want, d.IsValidAt(now))
		})
	}
}

func TestDiscount_AmountFor(t *testing.T) {
	subtotal := decimal.NewFromInt(200)

	t.Run("percentage of subtotal", func(t *testing.T) {
		d, err := NewDiscount(uuid.New(), "TEN", DiscountTypePercentage, decimal.NewFromInt(10), nil, nil)
		require.NoError(t, err)
		assert.True(t, d.AmountFor(subtotal).Equal(decimal.NewFromInt(20)))
	})

	t.Run("fixed amount capped at subtotal", func(t *testing.T) {
		d, err := NewDiscount(uuid.New(), "HUGE", DiscountTypeFixed, decimal.NewFromInt(500), nil, nil)
		require.NoError(t, err)
		assert.True(t, d.AmountFor(subtotal).Equal(subtotal))
	})
}

func TestNewDiscount_Validation(t *testing.T) {
	t.Run("rejects percentage above 100", func(t *testing.T) {
		_, err := NewDiscount(uuid.New(), "BAD", DiscountTypePercentage, decimal.NewFromInt(120), nil, nil)
		assert.Error(t, err)
	})

	t.Run("rejects non-positive value", func(t *testing.T) {
		_, err := NewDiscount(uuid.New(), "BAD", DiscountTypeFixed, decimal.Zero, nil, nil)
		assert.Error(t, err)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewDiscount(uuid.New(), "BAD", DiscountType("bogus"), decimal.NewFromInt(10), nil, nil)
		assert.Error(t, err)
	})
}

func TestShippingMethod_CostFor(t *testing.T) {
	storeID := uuid.New()

	t.Run("fixed cost ignores weight and subtotal", func(t *testing.T) {
		m, err := NewShippingMethod(storeID, "Standard", ShippingCalculationFixed, decimal.NewFromInt(10))
		require.NoError(t, err)

		cost := m.CostFor(decimal.NewFromInt(1000), decimal.NewFromInt(50))
		assert.True(t, cost.Equal(decimal.NewFromInt(10)))
	})

	t.Run("weight based adds per-unit rate", func(t *testing.T) {
		m, err := NewShippingMethod(storeID, "Freight", ShippingCalculationWeight, decimal.NewFromInt(5))
		require.NoError(t, err)
		m.WeightRate = decimal.NewFromFloat(1.5)

		cost := m.CostFor(decimal.NewFromInt(100), decimal.NewFromInt(4))
		assert.True(t, cost.Equal(decimal.NewFromInt(11)))
	})

	t.Run("price based waives cost above the threshold", func(t *testing.T) {
		m, err := NewShippingMethod(storeID, "Economy", ShippingCalculationPriceBased, decimal.NewFromInt(10))
		require.NoError(t, err)
		m.FreeShippingThreshold = decimal.NewFromInt(100)

		assert.True(t, m.CostFor(decimal.NewFromInt(99), decimal.Zero).Equal(decimal.NewFromInt(10)))
		assert.True(t, m.CostFor(decimal.NewFromInt(100), decimal.Zero).IsZero())
	})

	t.Run("price based with no threshold always charges base cost", func(t *testing.T) {
		m, err := NewShippingMethod(storeID, "Economy", ShippingCalculationPriceBased, decimal.NewFromInt(10))
		require.NoError(t, err)

		assert.True(t, m.CostFor(decimal.Zero, decimal.Zero).Equal(decimal.NewFromInt(10)))
		assert.True(t, m.CostFor(decimal.NewFromInt(10000), decimal.Zero).Equal(decimal.NewFromInt(10)))
	})
}
