package usecase

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestConverter() *MassConverter {
	return NewMassConverter(MassConfig{
		Densities: map[string]float64{
			"oil":  13,
			"rice": 195,
			"Aloo": 150,
		},
	})
}

func TestNewMassConverter(t *testing.T) {
	t.Run("uses defaults when zero", func(t *testing.T) {
		c := NewMassConverter(MassConfig{})
		assert.Equal(t, 10.0, c.defaultBaseGrams)
		assert.Equal(t, 100.0, c.genericUnitGrams)
	})

	t.Run("normalizes density keys and drops invalid entries", func(t *testing.T) {
		c := NewMassConverter(MassConfig{Densities: map[string]float64{
			" Aloo ": 150,
			"ghee":   -5,
			"salt":   math.Inf(1),
		}})
		grams, ok := c.Density("aloo")
		assert.True(t, ok)
		assert.Equal(t, 150.0, grams)

		_, ok = c.Density("ghee")
		assert.False(t, ok)
		_, ok = c.Density("salt")
		assert.False(t, ok)
	})
}

func TestToGrams(t *testing.T) {
	c := newTestConverter()

	testCases := []struct {
		name       string
		ingredient string
		quantity   string
		want       float64
	}{
		{name: "oil per tbsp", ingredient: "oil", quantity: "1 tbsp", want: 13},
		{name: "rice per cup", ingredient: "Rice", quantity: "2 cups", want: 390},
		{name: "aloo per medium", ingredient: "aloo", quantity: "2 medium", want: 300},
		{name: "unknown ingredient uses default base", ingredient: "jeera", quantity: "1 tsp", want: 10},
		{name: "bare count overrides density", ingredient: "aloo", quantity: "2", want: 200},
		{name: "empty quantity is one item", ingredient: "tomato", quantity: "", want: 100},
		{name: "no digits is one item", ingredient: "aloo", quantity: "some aloo", want: 100},
		{name: "grams are literal", ingredient: "tomato", quantity: "50g", want: 50},
		{name: "kilograms scale", ingredient: "rice", quantity: "1.5 kg", want: 1500},
		{name: "millilitres at water density", ingredient: "milk", quantity: "200 ml", want: 200},
		{name: "negative amount clamps to default", ingredient: "oil", quantity: "-2 tbsp", want: 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, c.ToGrams(tc.ingredient, tc.quantity), 1e-9)
		})
	}
}

func TestToGramsLinearForUnknownIngredients(t *testing.T) {
	c := newTestConverter()

	for _, unit := range []string{"tbsp", "tsp", "cup", "glass", "medium", "small", ""} {
		one := c.ToGrams("hing", "1 "+unit)
		for _, amount := range []float64{2, 3.5, 10} {
			got := c.ToGrams("hing", formatAmount(amount)+" "+unit)
			assert.InDelta(t, one*amount, got, 1e-9, "unit %q amount %v", unit, amount)
		}
	}
}

func TestToGramsNeverNegativeOrNonFinite(t *testing.T) {
	c := newTestConverter()
	inputs := []string{"", "-1", "-0.5 cup", "1e400 tbsp", "abc", "99999999999999999999 cup"}

	for _, in := range inputs {
		got := c.ToGrams("oil", in)
		assert.False(t, math.IsNaN(got) || math.IsInf(got, 0), "input %q", in)
		assert.GreaterOrEqual(t, got, 0.0, "input %q", in)
	}
}

func formatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}
