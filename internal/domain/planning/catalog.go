package planning

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrpcore/backend/internal/domain/shared/valueobject"
)

// The planning context reads products, suppliers, warehouses and tax codes
// owned by other contexts. These are read models: the planning services
// never mutate them.

// Product is the catalog view of a product
type Product struct {
	ID       uuid.UUID             `gorm:"type:uuid;primaryKey"`
	OrgID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	Code     string                `gorm:"size:50;not null"`
	Name     string                `gorm:"size:255;not null"`
	UOM      string                `gorm:"size:20"`
	StdPrice *decimal.Decimal      `gorm:"type:decimal(15,4)"`
	Currency valueobject.Currency  `gorm:"size:3"`
	IsActive bool                  `gorm:"not null;default:true"`
}

// TableName specifies the database table name
func (Product) TableName() string {
	return "products"
}

// Supplier is the vendor view used when drafting orders
type Supplier struct {
	ID           uuid.UUID            `gorm:"type:uuid;primaryKey"`
	OrgID        uuid.UUID            `gorm:"type:uuid;not null;index"`
	Code         string               `gorm:"size:50"`
	Name         string               `gorm:"size:255;not null"`
	Currency     valueobject.Currency `gorm:"size:3"`
	PaymentTerms string               `gorm:"size:100"`
	TaxCodeID    *uuid.UUID           `gorm:"type:uuid"`
	IsActive     bool                 `gorm:"not null;default:true"`
}

// TableName specifies the database table name
func (Supplier) TableName() string {
	return "suppliers"
}

// OrderCurrency returns the supplier's currency, defaulting when unset
func (s *Supplier) OrderCurrency() valueobject.Currency {
	if s.Currency == "" {
		return valueobject.DefaultCurrency
	}
	return s.Currency
}

// SupplierProduct links a product to a supplier with a negotiated price.
// At most one link per product carries the default flag.
type SupplierProduct struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey"`
	OrgID             uuid.UUID        `gorm:"type:uuid;not null;index"`
	SupplierID        uuid.UUID        `gorm:"type:uuid;not null;index"`
	ProductID         uuid.UUID        `gorm:"type:uuid;not null;index"`
	UnitPrice         *decimal.Decimal `gorm:"type:decimal(15,4)"`
	LeadTimeDays      int              `gorm:"not null;default:0"`
	IsDefaultSupplier bool             `gorm:"not null;default:false"`
}

// TableName specifies the database table name
func (SupplierProduct) TableName() string {
	return "supplier_products"
}

// Warehouse is the destination view for order delivery
type Warehouse struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrgID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Code     string    `gorm:"size:50"`
	Name     string    `gorm:"size:255;not null"`
	IsActive bool      `gorm:"not null;default:true"`
}

// TableName specifies the database table name
func (Warehouse) TableName() string {
	return "warehouses"
}

// GoodsReceipt is the receiving view of a posted receipt against an order
type GoodsReceipt struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrgID           uuid.UUID `gorm:"type:uuid;not null;index"`
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	ReceiptNumber   string    `gorm:"size:50"`
}

// TableName specifies the database table name
func (GoodsReceipt) TableName() string {
	return "goods_receipts"
}

// TaxCode is the tax configuration view
type TaxCode struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrgID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Code        string          `gorm:"size:20;not null"`
	RatePercent decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	IsDefault   bool            `gorm:"not null;default:false"`
}

// TableName specifies the database table name
func (TaxCode) TableName() string {
	return "tax_codes"
}
