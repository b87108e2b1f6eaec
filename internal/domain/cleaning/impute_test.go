package cleaning

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedian(t *testing.T) {
	t.Run("odd count", func(t *testing.T) {
		m, ok := Median([]float64{7, 5, 3})
		require.True(t, ok)
		assert.Equal(t, 5.0, m)
	})

	t.Run("even count averages the middle pair", func(t *testing.T) {
		m, ok := Median([]float64{1, 2, 3, 4})
		require.True(t, ok)
		assert.Equal(t, 2.5, m)
	})

	t.Run("empty", func(t *testing.T) {
		_, ok := Median(nil)
		assert.False(t, ok)
	})

	t.Run("input not mutated", func(t *testing.T) {
		values := []float64{3, 1, 2}
		_, _ = Median(values)
		assert.Equal(t, []float64{3, 1, 2}, values)
	})
}

func TestGroupMedians(t *testing.T) {
	medians := NewGroupMedians(map[string][]float64{
		"Laptops": {5, 7},
		"Audio":   {10},
	})

	t.Run("group median", func(t *testing.T) {
		v, fallback, ok := medians.Lookup("Laptops")
		require.True(t, ok)
		assert.False(t, fallback)
		assert.Equal(t, 6.0, v)
	})

	t.Run("unseen group falls back to global", func(t *testing.T) {
		v, fallback, ok := medians.Lookup("Tablets")
		require.True(t, ok)
		assert.True(t, fallback)
		assert.Equal(t, 7.0, v) // global median of {5, 7, 10}
	})

	t.Run("no observations anywhere", func(t *testing.T) {
		empty := NewGroupMedians(nil)
		_, _, ok := empty.Lookup("Laptops")
		assert.False(t, ok)
	})
}

func TestDecimalMedian(t *testing.T) {
	values := []decimal.Decimal{
		decimal.NewFromInt(10),
		decimal.NewFromInt(30),
		decimal.NewFromInt(20),
		decimal.NewFromInt(40),
	}
	m, ok := DecimalMedian(values)
	require.True(t, ok)
	assert.True(t, m.Equal(decimal.NewFromInt(25)), "got %s", m)

	_, ok = DecimalMedian(nil)
	assert.False(t, ok)
}

func TestDecimalGroupMedians(t *testing.T) {
	medians := NewDecimalGroupMedians(map[string][]decimal.Decimal{
		"Bogotá": {decimal.NewFromInt(12), decimal.NewFromInt(18)},
	})

	v, fallback, ok := medians.Lookup("Bogotá")
	require.True(t, ok)
	assert.False(t, fallback)
	assert.True(t, v.Equal(decimal.NewFromInt(15)))

	v, fallback, ok = medians.Lookup("Cali")
	require.True(t, ok)
	assert.True(t, fallback)
	assert.True(t, v.Equal(decimal.NewFromInt(15)))
}
