package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrpcore/backend/internal/domain/planning"
)

// The catalog repositories are read-only views over master data owned by
// other contexts.

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByCodes loads active products matching the given codes
func (r *GormProductRepository) FindByCodes(ctx context.Context, orgID uuid.UUID, codes []string) ([]planning.Product, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	var products []planning.Product
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND code IN ? AND is_active = ?", orgID, codes, true).
		Find(&products).Error
	return products, err
}

// FindByIDs loads products by id
func (r *GormProductRepository) FindByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]planning.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []planning.Product
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id IN ?", orgID, ids).
		Find(&products).Error
	return products, err
}

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID loads one supplier, nil when absent
func (r *GormSupplierRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*planning.Supplier, error) {
	var supplier planning.Supplier
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&supplier).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &supplier, nil
}

// FindByIDs loads suppliers by id
func (r *GormSupplierRepository) FindByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]planning.Supplier, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var suppliers []planning.Supplier
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id IN ?", orgID, ids).
		Find(&suppliers).Error
	return suppliers, err
}

// GormSupplierProductRepository implements SupplierProductRepository using GORM
type GormSupplierProductRepository struct {
	db *gorm.DB
}

// NewGormSupplierProductRepository creates a new GormSupplierProductRepository
func NewGormSupplierProductRepository(db *gorm.DB) *GormSupplierProductRepository {
	return &GormSupplierProductRepository{db: db}
}

// FindDefaultsByProducts returns the default-supplier links for the products
func (r *GormSupplierProductRepository) FindDefaultsByProducts(ctx context.Context, orgID uuid.UUID, productIDs []uuid.UUID) ([]planning.SupplierProduct, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}
	var links []planning.SupplierProduct
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND product_id IN ? AND is_default_supplier = ?", orgID, productIDs, true).
		Find(&links).Error
	return links, err
}

// FindBySupplierAndProduct returns the price link between one supplier and
// one product, nil when none exists
func (r *GormSupplierProductRepository) FindBySupplierAndProduct(ctx context.Context, orgID, supplierID, productID uuid.UUID) (*planning.SupplierProduct, error) {
	var link planning.SupplierProduct
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND supplier_id = ? AND product_id = ?", orgID, supplierID, productID).
		First(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// GormWarehouseRepository implements WarehouseRepository using GORM
type GormWarehouseRepository struct {
	db *gorm.DB
}

// NewGormWarehouseRepository creates a new GormWarehouseRepository
func NewGormWarehouseRepository(db *gorm.DB) *GormWarehouseRepository {
	return &GormWarehouseRepository{db: db}
}

// FindByID loads one warehouse, nil when absent
func (r *GormWarehouseRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*planning.Warehouse, error) {
	var warehouse planning.Warehouse
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&warehouse).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &warehouse, nil
}

// FirstActive returns the organization's oldest active warehouse
func (r *GormWarehouseRepository) FirstActive(ctx context.Context, orgID uuid.UUID) (*planning.Warehouse, error) {
	var warehouse planning.Warehouse
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND is_active = ?", orgID, true).
		Order("code ASC").
		First(&warehouse).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &warehouse, nil
}

// GormTaxCodeRepository implements TaxCodeRepository using GORM
type GormTaxCodeRepository struct {
	db *gorm.DB
}

// NewGormTaxCodeRepository creates a new GormTaxCodeRepository
func NewGormTaxCodeRepository(db *gorm.DB) *GormTaxCodeRepository {
	return &GormTaxCodeRepository{db: db}
}

// FindByID loads one tax code, nil when absent
func (r *GormTaxCodeRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*planning.TaxCode, error) {
	var taxCode planning.TaxCode
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&taxCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &taxCode, nil
}

// FindDefault returns the organization's default tax code, nil when none is
// configured
func (r *GormTaxCodeRepository) FindDefault(ctx context.Context, orgID uuid.UUID) (*planning.TaxCode, error) {
	var taxCode planning.TaxCode
	err := r.db.WithContext(ctx).
		Where("org_id = ? AND is_default = ?", orgID, true).
		First(&taxCode).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &taxCode, nil
}

// GormReceiptRepository implements ReceiptRepository using GORM
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// CountByPurchaseOrder counts posted receipts against an order
func (r *GormReceiptRepository) CountByPurchaseOrder(ctx context.Context, orgID, poID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&planning.GoodsReceipt{}).
		Where("org_id = ? AND purchase_order_id = ?", orgID, poID).
		Count(&count).Error
	return count, err
}

var (
	_ planning.ProductRepository         = (*GormProductRepository)(nil)
	_ planning.SupplierRepository        = (*GormSupplierRepository)(nil)
	_ planning.SupplierProductRepository = (*GormSupplierProductRepository)(nil)
	_ planning.WarehouseRepository       = (*GormWarehouseRepository)(nil)
	_ planning.TaxCodeRepository         = (*GormTaxCodeRepository)(nil)
	_ planning.ReceiptRepository         = (*GormReceiptRepository)(nil)
)
