package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrency_IsValid(t *testing.T) {
	assert.True(t, USD.IsValid())
	assert.True(t, Currency("SEK").IsValid())
	assert.False(t, Currency("usd").IsValid())
	assert.False(t, Currency("US").IsValid())
	assert.False(t, Currency("DOLLARS").IsValid())
}

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(19.99), EUR)
		require.NoError(t, err)
		assert.Equal(t, EUR, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(19.99)))
	})

	t.Run("rejects invalid currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), Currency("x"))
		assert.Error(t, err)
	})

	t.Run("parses amount strings", func(t *testing.T) {
		m, err := NewMoneyFromString("10.50", USD)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromFloat(10.5)))

		_, err = NewMoneyFromString("not-a-number", USD)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	ten := NewMoneyUSD(decimal.NewFromInt(10))
	three := NewMoneyUSD(decimal.NewFromInt(3))

	t.Run("add and subtract", func(t *testing.T) {
		sum, err := ten.Add(three)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(13)))

		diff, err := ten.Subtract(three)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(7)))
	})

	t.Run("mixed currencies are rejected", func(t *testing.T) {
		euros, err := NewMoney(decimal.NewFromInt(5), EUR)
		require.NoError(t, err)

		_, err = ten.Add(euros)
		assert.Error(t, err)
		_, err = ten.Subtract(euros)
		assert.Error(t, err)
		_, err = ten.LessThan(euros)
		assert.Error(t, err)
	})

	t.Run("multiply and percentage", func(t *testing.T) {
		doubled := ten.Multiply(decimal.NewFromInt(2))
		assert.True(t, doubled.Amount().Equal(decimal.NewFromInt(20)))

		fivePercent := ten.CalculatePercentage(decimal.NewFromInt(5))
		assert.True(t, fivePercent.Amount().Equal(decimal.NewFromFloat(0.5)))
	})

	t.Run("negate and round", func(t *testing.T) {
		m := NewMoneyUSDFromFloat(10.555)
		assert.Equal(t, "10.56", m.Round(2).StringFixed(2))
		assert.True(t, m.Negate().IsNegative())
	})
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyUSDFromFloat(42.50)

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"42.5","currency":"USD"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}
