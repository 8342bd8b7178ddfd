package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDiscountedPrice(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		pct      string
		expected string
	}{
		{name: "No discount", price: "100", pct: "0", expected: "100.00"},
		{name: "Ten percent", price: "100", pct: "10", expected: "90.00"},
		{name: "Rounds to two places", price: "99.99", pct: "15", expected: "84.99"},
		{name: "Full discount", price: "45.50", pct: "100", expected: "0.00"},
		{name: "Over one hundred is clamped", price: "45.50", pct: "150", expected: "0.00"},
		{name: "Negative percentage is ignored", price: "20", pct: "-5", expected: "20.00"},
		{name: "Negative price yields zero", price: "-3", pct: "10", expected: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiscountedPrice(d(tt.price), d(tt.pct))
			assert.Equal(t, tt.expected, got.StringFixed(2))
			assert.False(t, got.IsNegative())
		})
	}
}

func TestEngine_Compute(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	tests := []struct {
		name     string
		lines    []Line
		promoPct string
		subtotal string
		tax      string
		shipping string
		discount string
		total    string
	}{
		{
			name:     "Single discounted line below threshold",
			lines:    []Line{{UnitPrice: DiscountedPrice(d("100"), d("10")), Quantity: 2}},
			promoPct: "0",
			subtotal: "180.00",
			tax:      "9.00",
			shipping: "50.00",
			discount: "0.00",
			total:    "239.00",
		},
		{
			name:     "Exactly at threshold still pays shipping",
			lines:    []Line{{UnitPrice: d("250"), Quantity: 2}},
			promoPct: "0",
			subtotal: "500.00",
			tax:      "25.00",
			shipping: "50.00",
			discount: "0.00",
			total:    "575.00",
		},
		{
			name:     "Above threshold ships free",
			lines:    []Line{{UnitPrice: d("250.01"), Quantity: 2}},
			promoPct: "0",
			subtotal: "500.02",
			tax:      "25.00",
			shipping: "0.00",
			discount: "0.00",
			total:    "525.02",
		},
		{
			name: "Multiple lines with promo",
			lines: []Line{
				{UnitPrice: d("19.99"), Quantity: 3},
				{UnitPrice: d("5.25"), Quantity: 1},
			},
			promoPct: "10",
			subtotal: "65.22",
			tax:      "3.26",
			shipping: "50.00",
			discount: "6.52",
			total:    "111.96",
		},
		{
			name:     "No lines",
			lines:    nil,
			promoPct: "0",
			subtotal: "0.00",
			tax:      "0.00",
			shipping: "50.00",
			discount: "0.00",
			total:    "50.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			totals := engine.Compute(tt.lines, d(tt.promoPct))

			assert.Equal(t, tt.subtotal, totals.Subtotal.StringFixed(2))
			assert.Equal(t, tt.tax, totals.TaxAmount.StringFixed(2))
			assert.Equal(t, tt.shipping, totals.ShippingCost.StringFixed(2))
			assert.Equal(t, tt.discount, totals.DiscountAmount.StringFixed(2))
			assert.Equal(t, tt.total, totals.TotalAmount.StringFixed(2))
			require.NoError(t, totals.Verify())
		})
	}
}

func TestEngine_Compute_IsDeterministic(t *testing.T) {
	engine := NewEngine(DefaultConfig())
	lines := []Line{
		{UnitPrice: d("33.33"), Quantity: 3},
		{UnitPrice: d("0.01"), Quantity: 7},
	}

	first := engine.Compute(lines, d("12.5"))
	for i := 0; i < 100; i++ {
		again := engine.Compute(lines, d("12.5"))
		assert.True(t, first.TotalAmount.Equal(again.TotalAmount))
		assert.True(t, first.TaxAmount.Equal(again.TaxAmount))
	}
}

func TestEngine_Compute_CustomConfig(t *testing.T) {
	engine := NewEngine(Config{
		TaxRate:               d("0.18"),
		FreeShippingThreshold: d("1000"),
		FlatShippingFee:       d("99"),
	})

	totals := engine.Compute([]Line{{UnitPrice: d("10"), Quantity: 1}}, decimal.Zero)

	assert.Equal(t, "1.80", totals.TaxAmount.StringFixed(2))
	assert.Equal(t, "99.00", totals.ShippingCost.StringFixed(2))
	assert.Equal(t, "110.80", totals.TotalAmount.StringFixed(2))
}

func TestTotals_Verify(t *testing.T) {
	good := Totals{
		Subtotal:       d("180"),
		TaxAmount:      d("9"),
		ShippingCost:   d("50"),
		DiscountAmount: d("0"),
		TotalAmount:    d("239"),
	}
	assert.NoError(t, good.Verify())

	bad := good
	bad.TotalAmount = d("238.99")
	assert.Error(t, bad.Verify())

	overDiscount := good
	overDiscount.DiscountAmount = d("200")
	overDiscount.TotalAmount = d("39")
	assert.Error(t, overDiscount.Verify())
}
