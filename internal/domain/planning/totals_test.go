package planning

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateTotals(t *testing.T) {
	tests := []struct {
		name         string
		lines        []TotalsLine
		taxRate      string
		wantSubtotal string
		wantDiscount string
		wantTax      string
		wantTotal    string
	}{
		{
			name: "single line with discount, no tax",
			lines: []TotalsLine{
				{Quantity: dec("100"), UnitPrice: dec("2.50"), DiscountPercent: dec("10")},
			},
			taxRate:      "0",
			wantSubtotal: "225.00",
			wantDiscount: "25.00",
			wantTax:      "0.00",
			wantTotal:    "225.00",
		},
		{
			name: "single line with 23 percent tax",
			lines: []TotalsLine{
				{Quantity: dec("100"), UnitPrice: dec("10"), DiscountPercent: decimal.Zero},
			},
			taxRate:      "23",
			wantSubtotal: "1000.00",
			wantDiscount: "0.00",
			wantTax:      "230.00",
			wantTotal:    "1230.00",
		},
		{
			name: "multiple lines accumulate before rounding",
			lines: []TotalsLine{
				{Quantity: dec("3"), UnitPrice: dec("0.333"), DiscountPercent: decimal.Zero},
				{Quantity: dec("3"), UnitPrice: dec("0.333"), DiscountPercent: decimal.Zero},
			},
			taxRate:      "0",
			wantSubtotal: "2.00",
			wantDiscount: "0.00",
			wantTax:      "0.00",
			wantTotal:    "2.00",
		},
		{
			name: "fractional quantity with discount and tax",
			lines: []TotalsLine{
				{Quantity: dec("7.5"), UnitPrice: dec("19.99"), DiscountPercent: dec("12.5")},
			},
			taxRate:      "23",
			wantSubtotal: "131.18",
			wantDiscount: "18.74",
			wantTax:      "30.17",
			wantTotal:    "161.35",
		},
		{
			name:         "no lines",
			lines:        nil,
			taxRate:      "23",
			wantSubtotal: "0.00",
			wantDiscount: "0.00",
			wantTax:      "0.00",
			wantTotal:    "0.00",
		},
		{
			name: "full discount zeroes the line",
			lines: []TotalsLine{
				{Quantity: dec("10"), UnitPrice: dec("5"), DiscountPercent: dec("100")},
			},
			taxRate:      "23",
			wantSubtotal: "0.00",
			wantDiscount: "50.00",
			wantTax:      "0.00",
			wantTotal:    "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateTotals(tt.lines, dec(tt.taxRate))
			assert.Equal(t, tt.wantSubtotal, got.Subtotal.StringFixed(2))
			assert.Equal(t, tt.wantDiscount, got.DiscountTotal.StringFixed(2))
			assert.Equal(t, tt.wantTax, got.TaxAmount.StringFixed(2))
			assert.Equal(t, tt.wantTotal, got.Total.StringFixed(2))
		})
	}
}

func TestCalculateTotals_TotalIdentity(t *testing.T) {
	// The persisted total must equal subtotal + tax_amount on the rounded
	// values, even when independent rounding would disagree.
	lines := []TotalsLine{
		{Quantity: dec("1"), UnitPrice: dec("10.005"), DiscountPercent: decimal.Zero},
		{Quantity: dec("1"), UnitPrice: dec("20.005"), DiscountPercent: decimal.Zero},
	}
	got := CalculateTotals(lines, dec("23"))
	assert.True(t, got.Total.Equal(got.Subtotal.Add(got.TaxAmount)),
		"total %s != subtotal %s + tax %s", got.Total, got.Subtotal, got.TaxAmount)
}
