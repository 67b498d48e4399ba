package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrpcore/backend/internal/domain/planning"
	"github.com/mrpcore/backend/internal/domain/shared"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID loads an order with its lines, scoped to the organization.
// Returns nil without error when no such order exists.
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*planning.PurchaseOrder, error) {
	var po planning.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &po, nil
}

// FindByIDs loads a batch of orders with lines
func (r *GormPurchaseOrderRepository) FindByIDs(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) ([]planning.PurchaseOrder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var orders []planning.PurchaseOrder
	err := r.db.WithContext(ctx).
		Preload("Lines", func(db *gorm.DB) *gorm.DB { return db.Order("line_number ASC") }).
		Where("org_id = ? AND id IN ?", orgID, ids).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// List returns a paginated, filtered page of orders
func (r *GormPurchaseOrderRepository) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (shared.Paginated[planning.PurchaseOrder], error) {
	query := r.db.WithContext(ctx).
		Model(&planning.PurchaseOrder{}).
		Where("org_id = ?", orgID)

	if status, ok := filter.Filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if supplierID, ok := filter.Filters["supplier_id"]; ok {
		query = query.Where("supplier_id = ?", supplierID)
	}
	if search, ok := filter.Filters["search"].(string); ok && search != "" {
		query = query.Where("po_number ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[planning.PurchaseOrder]{}, err
	}

	orderBy := "created_at"
	if filter.OrderBy != "" {
		orderBy = filter.OrderBy
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}

	var orders []planning.PurchaseOrder
	err := query.
		Order(fmt.Sprintf("%s %s", orderBy, dir)).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Preload("Lines").
		Find(&orders).Error
	if err != nil {
		return shared.Paginated[planning.PurchaseOrder]{}, err
	}
	return shared.NewPaginated(orders, total, filter.Page, filter.PageSize), nil
}

// CreateHeader inserts the order header without lines
func (r *GormPurchaseOrderRepository) CreateHeader(ctx context.Context, po *planning.PurchaseOrder) error {
	return r.db.WithContext(ctx).Omit("Lines").Create(po).Error
}

// CreateLines inserts line items for an existing header
func (r *GormPurchaseOrderRepository) CreateLines(ctx context.Context, lines []planning.PurchaseOrderLine) error {
	if len(lines) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&lines).Error
}

// DeleteHeader removes an order header and its lines
func (r *GormPurchaseOrderRepository) DeleteHeader(ctx context.Context, orgID, poID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("purchase_order_id = ?", poID).
			Delete(&planning.PurchaseOrderLine{}).Error; err != nil {
			return err
		}
		return tx.Where("org_id = ? AND id = ?", orgID, poID).
			Delete(&planning.PurchaseOrder{}).Error
	})
}

// Save persists the full aggregate state, replacing lines
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *planning.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(po).Error; err != nil {
			return err
		}
		if err := tx.Where("purchase_order_id = ?", po.ID).
			Delete(&planning.PurchaseOrderLine{}).Error; err != nil {
			return err
		}
		if len(po.Lines) == 0 {
			return nil
		}
		for i := range po.Lines {
			po.Lines[i].PurchaseOrderID = po.ID
		}
		return tx.Create(&po.Lines).Error
	})
}

// UpdateWhereStatus persists header changes only if the stored row is still
// in the expected status. The WHERE clause carries the optimistic check; a
// zero rows-affected result means another writer got there first.
func (r *GormPurchaseOrderRepository) UpdateWhereStatus(ctx context.Context, po *planning.PurchaseOrder, expected planning.Status) (bool, error) {
	updates := map[string]interface{}{
		"status":           po.Status,
		"approval_status":  po.ApprovalStatus,
		"submitted_by":     po.SubmittedBy,
		"submitted_at":     po.SubmittedAt,
		"approved_by":      po.ApprovedBy,
		"approved_at":      po.ApprovedAt,
		"approval_notes":   po.ApprovalNotes,
		"rejection_reason": po.RejectionReason,
		"subtotal":         po.Subtotal,
		"discount_total":   po.DiscountTotal,
		"tax_amount":       po.TaxAmount,
		"total":            po.Total,
		"updated_by":       po.UpdatedBy,
		"updated_at":       time.Now(),
		"version":          po.Version,
	}
	result := r.db.WithContext(ctx).
		Model(&planning.PurchaseOrder{}).
		Where("org_id = ? AND id = ? AND status = ?", po.OrgID, po.ID, expected).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GenerateOrderNumber generates the next order number for an organization.
// Format: PO-YYYY-NNNNN (e.g. PO-2026-00001), numbered per year.
func (r *GormPurchaseOrderRepository) GenerateOrderNumber(ctx context.Context, orgID uuid.UUID) (string, error) {
	prefix := fmt.Sprintf("PO-%d-", time.Now().Year())

	var last planning.PurchaseOrder
	err := r.db.WithContext(ctx).
		Model(&planning.PurchaseOrder{}).
		Where("org_id = ? AND po_number LIKE ?", orgID, prefix+"%").
		Order("po_number DESC").
		First(&last).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var next int64 = 1
	if err == nil && last.PONumber != "" {
		parts := strings.Split(last.PONumber, "-")
		if len(parts) == 3 {
			var num int64
			if _, parseErr := fmt.Sscanf(parts[2], "%d", &num); parseErr == nil {
				next = num + 1
			}
		}
	}
	return fmt.Sprintf("%s%05d", prefix, next), nil
}

var _ planning.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
