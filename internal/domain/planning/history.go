package planning

import (
	"github.com/google/uuid"

	"github.com/mrpcore/backend/internal/domain/shared"
)

// HistoryAction identifies the workflow decision recorded in a history entry
type HistoryAction string

const (
	HistoryActionSubmitted HistoryAction = "submitted"
	HistoryActionApproved  HistoryAction = "approved"
	HistoryActionRejected  HistoryAction = "rejected"
)

// ApprovalHistoryRecord is an append-only audit entry for the approval
// workflow. Records are never updated or deleted.
type ApprovalHistoryRecord struct {
	shared.BaseEntity
	OrgID           uuid.UUID     `gorm:"type:uuid;not null;index"`
	PurchaseOrderID uuid.UUID     `gorm:"type:uuid;not null;index"`
	Action          HistoryAction `gorm:"size:20;not null"`
	UserID          uuid.UUID     `gorm:"type:uuid;not null"`
	UserName        string        `gorm:"size:255"`
	UserRole        string        `gorm:"size:50"`
	Notes           string        `gorm:"type:text"`
}

// TableName specifies the database table name
func (ApprovalHistoryRecord) TableName() string {
	return "po_approval_history"
}

// NewApprovalHistoryRecord creates a history entry for a workflow decision
func NewApprovalHistoryRecord(orgID, poID uuid.UUID, action HistoryAction, userID uuid.UUID, userName, userRole, notes string) *ApprovalHistoryRecord {
	return &ApprovalHistoryRecord{
		BaseEntity:      shared.NewBaseEntity(),
		OrgID:           orgID,
		PurchaseOrderID: poID,
		Action:          action,
		UserID:          userID,
		UserName:        userName,
		UserRole:        userRole,
		Notes:           notes,
	}
}
