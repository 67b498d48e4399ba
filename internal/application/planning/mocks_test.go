package planning

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/mrpcore/backend/internal/domain/planning"
	"github.com/mrpcore/backend/internal/domain/shared"
)

type mockPORepo struct {
	mock.Mock
}

func (m *mockPORepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*planning.PurchaseOrder, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*planning.PurchaseOrder), args.Error(1)
}

func (m *mockPORepo) FindByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]planning.PurchaseOrder, error) {
	args := m.Called(ctx, orgID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]planning.PurchaseOrder), args.Error(1)
}

func (m *mockPORepo) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (shared.Paginated[planning.PurchaseOrder], error) {
	args := m.Called(ctx, orgID, filter)
	return args.Get(0).(shared.Paginated[planning.PurchaseOrder]), args.Error(1)
}

func (m *mockPORepo) CreateHeader(ctx context.Context, po *planning.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *mockPORepo) CreateLines(ctx context.Context, lines []planning.PurchaseOrderLine) error {
	args := m.Called(ctx, lines)
	return args.Error(0)
}

func (m *mockPORepo) DeleteHeader(ctx context.Context, orgID, poID uuid.UUID) error {
	args := m.Called(ctx, orgID, poID)
	return args.Error(0)
}

func (m *mockPORepo) Save(ctx context.Context, po *planning.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *mockPORepo) UpdateWhereStatus(ctx context.Context, po *planning.PurchaseOrder, expected planning.Status) (bool, error) {
	args := m.Called(ctx, po, expected)
	return args.Bool(0), args.Error(1)
}

func (m *mockPORepo) GenerateOrderNumber(ctx context.Context, orgID uuid.UUID) (string, error) {
	args := m.Called(ctx, orgID)
	return args.String(0), args.Error(1)
}

type mockHistoryRepo struct {
	mock.Mock
}

func (m *mockHistoryRepo) Append(ctx context.Context, record *planning.ApprovalHistoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockHistoryRepo) ListByPurchaseOrder(ctx context.Context, orgID, poID uuid.UUID, filter shared.Filter) (shared.Paginated[planning.ApprovalHistoryRecord], error) {
	args := m.Called(ctx, orgID, poID, filter)
	return args.Get(0).(shared.Paginated[planning.ApprovalHistoryRecord]), args.Error(1)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) FindByCodes(ctx context.Context, orgID uuid.UUID, codes []string) ([]planning.Product, error) {
	args := m.Called(ctx, orgID, codes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]planning.Product), args.Error(1)
}

func (m *mockProductRepo) FindByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]planning.Product, error) {
	args := m.Called(ctx, orgID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]planning.Product), args.Error(1)
}

type mockSupplierRepo struct {
	mock.Mock
}

func (m *mockSupplierRepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*planning.Supplier, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*planning.Supplier), args.Error(1)
}

func (m *mockSupplierRepo) FindByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]planning.Supplier, error) {
	args := m.Called(ctx, orgID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]planning.Supplier), args.Error(1)
}

type mockSupplierProductRepo struct {
	mock.Mock
}

func (m *mockSupplierProductRepo) FindDefaultsByProducts(ctx context.Context, orgID uuid.UUID, productIDs []uuid.UUID) ([]planning.SupplierProduct, error) {
	args := m.Called(ctx, orgID, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]planning.SupplierProduct), args.Error(1)
}

func (m *mockSupplierProductRepo) FindBySupplierAndProduct(ctx context.Context, orgID, supplierID, productID uuid.UUID) (*planning.SupplierProduct, error) {
	args := m.Called(ctx, orgID, supplierID, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*planning.SupplierProduct), args.Error(1)
}

type mockWarehouseRepo struct {
	mock.Mock
}

func (m *mockWarehouseRepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*planning.Warehouse, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*planning.Warehouse), args.Error(1)
}

func (m *mockWarehouseRepo) FirstActive(ctx context.Context, orgID uuid.UUID) (*planning.Warehouse, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*planning.Warehouse), args.Error(1)
}

type mockTaxCodeRepo struct {
	mock.Mock
}

func (m *mockTaxCodeRepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*planning.TaxCode, error) {
	args := m.Called(ctx, orgID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*planning.TaxCode), args.Error(1)
}

func (m *mockTaxCodeRepo) FindDefault(ctx context.Context, orgID uuid.UUID) (*planning.TaxCode, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*planning.TaxCode), args.Error(1)
}

type mockReceiptRepo struct {
	mock.Mock
}

func (m *mockReceiptRepo) CountByPurchaseOrder(ctx context.Context, orgID, poID uuid.UUID) (int64, error) {
	args := m.Called(ctx, orgID, poID)
	return args.Get(0).(int64), args.Error(1)
}

type mockSettingsProvider struct {
	mock.Mock
}

func (m *mockSettingsProvider) GetPlanningSettings(ctx context.Context, orgID uuid.UUID) (*planning.PlanningSettings, error) {
	args := m.Called(ctx, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*planning.PlanningSettings), args.Error(1)
}

type mockIdentityProvider struct {
	mock.Mock
}

func (m *mockIdentityProvider) ResolveUser(ctx context.Context, orgID, userID uuid.UUID) (*planning.OrgUser, error) {
	args := m.Called(ctx, orgID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*planning.OrgUser), args.Error(1)
}

func (m *mockIdentityProvider) FindUserIDsByRoles(ctx context.Context, orgID uuid.UUID, roles []planning.Role) ([]uuid.UUID, error) {
	args := m.Called(ctx, orgID, roles)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, n planning.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
