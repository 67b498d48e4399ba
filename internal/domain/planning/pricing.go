package planning

import "github.com/shopspring/decimal"

// PriceSource records which step of the pricing cascade produced a unit price
type PriceSource string

const (
	PriceSourceImport   PriceSource = "import"
	PriceSourceSupplier PriceSource = "supplier"
	PriceSourceStandard PriceSource = "standard"
)

// ResolvedPrice is the outcome of the pricing cascade for one line
type ResolvedPrice struct {
	UnitPrice decimal.Decimal
	Source    PriceSource
}

// ResolvePrice applies the pricing cascade: an explicit price from the
// caller wins, then the supplier-specific price, then the product's
// standard price. A nil standard price (unknown product) resolves to zero
// with the standard source so the line can still be drafted and corrected
// later.
func ResolvePrice(importPrice, supplierPrice, standardPrice *decimal.Decimal) ResolvedPrice {
	if importPrice != nil {
		return ResolvedPrice{UnitPrice: *importPrice, Source: PriceSourceImport}
	}
	if supplierPrice != nil {
		return ResolvedPrice{UnitPrice: *supplierPrice, Source: PriceSourceSupplier}
	}
	if standardPrice != nil {
		return ResolvedPrice{UnitPrice: *standardPrice, Source: PriceSourceStandard}
	}
	return ResolvedPrice{UnitPrice: decimal.Zero, Source: PriceSourceStandard}
}
