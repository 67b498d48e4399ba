package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrpcore/backend/internal/domain/planning"
	"github.com/mrpcore/backend/internal/domain/shared"
)

// GormApprovalHistoryRepository implements ApprovalHistoryRepository using
// GORM. The table is append-only: this repository exposes no update or
// delete operations.
type GormApprovalHistoryRepository struct {
	db *gorm.DB
}

// NewGormApprovalHistoryRepository creates a new GormApprovalHistoryRepository
func NewGormApprovalHistoryRepository(db *gorm.DB) *GormApprovalHistoryRepository {
	return &GormApprovalHistoryRepository{db: db}
}

// Append inserts a new history record
func (r *GormApprovalHistoryRepository) Append(ctx context.Context, record *planning.ApprovalHistoryRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// ListByPurchaseOrder returns a page of history records for one order,
// newest first by default
func (r *GormApprovalHistoryRepository) ListByPurchaseOrder(ctx context.Context, orgID, poID uuid.UUID, filter shared.Filter) (shared.Paginated[planning.ApprovalHistoryRecord], error) {
	query := r.db.WithContext(ctx).
		Model(&planning.ApprovalHistoryRecord{}).
		Where("org_id = ? AND purchase_order_id = ?", orgID, poID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[planning.ApprovalHistoryRecord]{}, err
	}

	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}

	var records []planning.ApprovalHistoryRecord
	err := query.
		Order("created_at " + dir).
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&records).Error
	if err != nil {
		return shared.Paginated[planning.ApprovalHistoryRecord]{}, err
	}
	return shared.NewPaginated(records, total, filter.Page, filter.PageSize), nil
}

var _ planning.ApprovalHistoryRepository = (*GormApprovalHistoryRepository)(nil)
