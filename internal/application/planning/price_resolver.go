package planning

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrpcore/backend/internal/domain/planning"
	"github.com/mrpcore/backend/internal/domain/shared"
)

// PriceResolver resolves line unit prices through the pricing cascade:
// caller-provided price, then the supplier's negotiated price, then the
// product's standard price.
type PriceResolver struct {
	productRepo         planning.ProductRepository
	supplierProductRepo planning.SupplierProductRepository
}

// NewPriceResolver creates a new price resolver
func NewPriceResolver(productRepo planning.ProductRepository, supplierProductRepo planning.SupplierProductRepository) *PriceResolver {
	return &PriceResolver{
		productRepo:         productRepo,
		supplierProductRepo: supplierProductRepo,
	}
}

// Resolve returns the unit price for one product from one supplier.
// importPrice, when non-nil, short-circuits the cascade without any lookup.
func (r *PriceResolver) Resolve(ctx context.Context, orgID, productID, supplierID uuid.UUID, importPrice *decimal.Decimal) (planning.ResolvedPrice, error) {
	if importPrice != nil {
		return planning.ResolvePrice(importPrice, nil, nil), nil
	}

	var supplierPrice *decimal.Decimal
	link, err := r.supplierProductRepo.FindBySupplierAndProduct(ctx, orgID, supplierID, productID)
	if err != nil {
		return planning.ResolvedPrice{}, err
	}
	if link != nil {
		supplierPrice = link.UnitPrice
	}

	var standardPrice *decimal.Decimal
	products, err := r.productRepo.FindByIDs(ctx, orgID, []uuid.UUID{productID})
	if err != nil {
		return planning.ResolvedPrice{}, err
	}
	if len(products) == 0 {
		return planning.ResolvedPrice{}, shared.NewDomainError("PRODUCT_NOT_FOUND", "Product not found")
	}
	standardPrice = products[0].StdPrice

	return planning.ResolvePrice(nil, supplierPrice, standardPrice), nil
}
