package planning

import "github.com/shopspring/decimal"

var (
	hundred     = decimal.NewFromInt(100)
	maxQuantity = decimal.RequireFromString("999999.99")
)

// TotalsLine carries the pricing inputs of a single order line
type TotalsLine struct {
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
}

// OrderTotals is the computed monetary summary of an order
type OrderTotals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	Total         decimal.Decimal `json:"total"`
}

// lineNet returns quantity * unit_price * (1 - discount/100) at full precision
func lineNet(l TotalsLine) decimal.Decimal {
	gross := l.Quantity.Mul(l.UnitPrice)
	if l.DiscountPercent.IsZero() {
		return gross
	}
	return gross.Sub(gross.Mul(l.DiscountPercent).Div(hundred))
}

// CalculateTotals computes order totals from line inputs and a tax rate
// expressed as a percentage. All arithmetic runs at full decimal precision;
// results are rounded to 2 places only at the point of return. The returned
// Total is the sum of the rounded Subtotal and rounded TaxAmount so that the
// identity total = subtotal + tax_amount holds on the persisted values.
func CalculateTotals(lines []TotalsLine, taxRatePercent decimal.Decimal) OrderTotals {
	subtotal := decimal.Zero
	discountTotal := decimal.Zero
	for _, l := range lines {
		gross := l.Quantity.Mul(l.UnitPrice)
		net := lineNet(l)
		subtotal = subtotal.Add(net)
		discountTotal = discountTotal.Add(gross.Sub(net))
	}
	taxAmount := subtotal.Mul(taxRatePercent).Div(hundred)

	roundedSubtotal := subtotal.Round(2)
	roundedTax := taxAmount.Round(2)
	return OrderTotals{
		Subtotal:      roundedSubtotal,
		DiscountTotal: discountTotal.Round(2),
		TaxAmount:     roundedTax,
		Total:         roundedSubtotal.Add(roundedTax),
	}
}
