// Package notify delivers workflow notifications to organization members.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mrpcore/backend/internal/domain/planning"
	"github.com/mrpcore/backend/internal/domain/shared"
)

// NotificationModel is one stored in-app notification, one row per recipient
type NotificationModel struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrgID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	RecipientID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	PurchaseOrderID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Title           string     `gorm:"size:255;not null"`
	Message         string     `gorm:"type:text"`
	ReadAt          *time.Time `gorm:""`
	CreatedAt       time.Time  `gorm:"not null"`
}

// TableName specifies the database table name
func (NotificationModel) TableName() string {
	return "notifications"
}

// InboxNotifier stores notifications as in-app inbox rows. Writes for all
// recipients happen in one transaction so a partially delivered batch never
// lands in the inbox.
type InboxNotifier struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewInboxNotifier creates a new InboxNotifier
func NewInboxNotifier(db *gorm.DB, logger *zap.Logger) *InboxNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InboxNotifier{db: db, logger: logger}
}

// Notify fans the notification out to every recipient
func (n *InboxNotifier) Notify(ctx context.Context, notification planning.Notification) error {
	if len(notification.RecipientIDs) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]NotificationModel, 0, len(notification.RecipientIDs))
	for _, recipientID := range notification.RecipientIDs {
		rows = append(rows, NotificationModel{
			ID:              uuid.New(),
			OrgID:           notification.OrgID,
			RecipientID:     recipientID,
			PurchaseOrderID: notification.PurchaseOrderID,
			Title:           notification.Title,
			Message:         notification.Message,
			CreatedAt:       now,
		})
	}

	if err := n.db.WithContext(ctx).Create(&rows).Error; err != nil {
		n.logger.Error("Failed to store notifications",
			zap.String("purchase_order_id", notification.PurchaseOrderID.String()),
			zap.Int("recipients", len(rows)),
			zap.Error(err))
		return err
	}

	n.logger.Debug("Stored notifications",
		zap.String("purchase_order_id", notification.PurchaseOrderID.String()),
		zap.Int("recipients", len(rows)))
	return nil
}

// ListUnread returns a page of unread notifications for one member
func (n *InboxNotifier) ListUnread(ctx context.Context, orgID, recipientID uuid.UUID, filter shared.Filter) (shared.Paginated[NotificationModel], error) {
	query := n.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("org_id = ? AND recipient_id = ? AND read_at IS NULL", orgID, recipientID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[NotificationModel]{}, err
	}

	var rows []NotificationModel
	err := query.
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&rows).Error
	if err != nil {
		return shared.Paginated[NotificationModel]{}, err
	}
	return shared.NewPaginated(rows, total, filter.Page, filter.PageSize), nil
}

// MarkRead marks one notification as read. Only the recipient can mark
// their own rows.
func (n *InboxNotifier) MarkRead(ctx context.Context, orgID, recipientID, notificationID uuid.UUID) error {
	result := n.db.WithContext(ctx).
		Model(&NotificationModel{}).
		Where("org_id = ? AND recipient_id = ? AND id = ? AND read_at IS NULL", orgID, recipientID, notificationID).
		Update("read_at", time.Now())
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ planning.Notifier = (*InboxNotifier)(nil)
