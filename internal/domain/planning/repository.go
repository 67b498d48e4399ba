package planning

import (
	"context"

	"github.com/google/uuid"

	"github.com/mrpcore/backend/internal/domain/shared"
)

// PurchaseOrderRepository defines persistence for purchase orders
type PurchaseOrderRepository interface {
	// FindByID loads an order with its lines, scoped to the organization
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*PurchaseOrder, error)
	// FindByIDs loads a batch of orders with lines, preserving only those
	// that exist and belong to the organization
	FindByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]PurchaseOrder, error)
	// List returns a paginated, filtered page of orders
	List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (shared.Paginated[PurchaseOrder], error)
	// CreateHeader inserts the order header without lines
	CreateHeader(ctx context.Context, po *PurchaseOrder) error
	// CreateLines inserts line items for an existing header
	CreateLines(ctx context.Context, lines []PurchaseOrderLine) error
	// DeleteHeader removes an order header and its lines. Used to unwind a
	// partially created order when its line insert fails.
	DeleteHeader(ctx context.Context, orgID, poID uuid.UUID) error
	// Save persists the full aggregate state unconditionally
	Save(ctx context.Context, po *PurchaseOrder) error
	// UpdateWhereStatus persists header changes only if the stored row is
	// still in the expected status. Returns false without error when the
	// row was not in that status, which callers map to a conflict.
	UpdateWhereStatus(ctx context.Context, po *PurchaseOrder, expected Status) (bool, error)
	// GenerateOrderNumber produces the next sequential PO number for the
	// organization in the form PO-YYYY-NNNNN
	GenerateOrderNumber(ctx context.Context, orgID uuid.UUID) (string, error)
}

// ApprovalHistoryRepository persists the append-only approval audit trail
type ApprovalHistoryRepository interface {
	Append(ctx context.Context, record *ApprovalHistoryRecord) error
	ListByPurchaseOrder(ctx context.Context, orgID, poID uuid.UUID, filter shared.Filter) (shared.Paginated[ApprovalHistoryRecord], error)
}

// ProductRepository reads the product catalog
type ProductRepository interface {
	FindByCodes(ctx context.Context, orgID uuid.UUID, codes []string) ([]Product, error)
	FindByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]Product, error)
}

// SupplierRepository reads supplier master data
type SupplierRepository interface {
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Supplier, error)
	FindByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]Supplier, error)
}

// SupplierProductRepository reads supplier price lists
type SupplierProductRepository interface {
	// FindDefaultsByProducts returns the default-supplier links for the
	// given products
	FindDefaultsByProducts(ctx context.Context, orgID uuid.UUID, productIDs []uuid.UUID) ([]SupplierProduct, error)
	// FindBySupplierAndProduct returns the price link between one supplier
	// and one product, or nil when none exists
	FindBySupplierAndProduct(ctx context.Context, orgID, supplierID, productID uuid.UUID) (*SupplierProduct, error)
}

// WarehouseRepository reads warehouse master data
type WarehouseRepository interface {
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*Warehouse, error)
	// FirstActive returns the organization's oldest active warehouse, or
	// nil when the organization has none
	FirstActive(ctx context.Context, orgID uuid.UUID) (*Warehouse, error)
}

// TaxCodeRepository reads tax configuration
type TaxCodeRepository interface {
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*TaxCode, error)
	FindDefault(ctx context.Context, orgID uuid.UUID) (*TaxCode, error)
}

// ReceiptRepository reads posted goods receipts
type ReceiptRepository interface {
	CountByPurchaseOrder(ctx context.Context, orgID, poID uuid.UUID) (int64, error)
}

// SettingsProvider resolves the per-organization workflow configuration
type SettingsProvider interface {
	GetPlanningSettings(ctx context.Context, orgID uuid.UUID) (*PlanningSettings, error)
}

// OrgUser is the identity view of an organization member
type OrgUser struct {
	ID   uuid.UUID
	Name string
	Role Role
}

// IdentityProvider resolves organization members and their roles
type IdentityProvider interface {
	// ResolveUser returns the member record, or an error when the user does
	// not belong to the organization
	ResolveUser(ctx context.Context, orgID, userID uuid.UUID) (*OrgUser, error)
	// FindUserIDsByRoles returns the ids of all members holding any of the
	// given roles
	FindUserIDsByRoles(ctx context.Context, orgID uuid.UUID, roles []Role) ([]uuid.UUID, error)
}

// Notification is an outbound message to organization members
type Notification struct {
	OrgID           uuid.UUID
	RecipientIDs    []uuid.UUID
	PurchaseOrderID uuid.UUID
	Title           string
	Message         string
}

// Notifier delivers notifications. Delivery is best effort: callers must
// not fail a workflow operation because a notification could not be sent.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
