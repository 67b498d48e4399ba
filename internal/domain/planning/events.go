package planning

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrpcore/backend/internal/domain/shared"
)

// Event types for the planning context
const (
	EventTypePurchaseOrderCreated   = "planning.purchase_order.created"
	EventTypePurchaseOrderSubmitted = "planning.purchase_order.submitted"
	EventTypePurchaseOrderApproved  = "planning.purchase_order.approved"
	EventTypePurchaseOrderRejected  = "planning.purchase_order.rejected"
	EventTypeBulkOrdersCreated      = "planning.purchase_order.bulk_created"
)

const aggregateTypePurchaseOrder = "PurchaseOrder"

// PurchaseOrderCreatedEvent is raised when a new purchase order is drafted
type PurchaseOrderCreatedEvent struct {
	shared.BaseDomainEvent
	PONumber   string    `json:"po_number"`
	SupplierID uuid.UUID `json:"supplier_id"`
}

// NewPurchaseOrderCreatedEvent creates a new purchase order created event
func NewPurchaseOrderCreatedEvent(po *PurchaseOrder) *PurchaseOrderCreatedEvent {
	return &PurchaseOrderCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCreated, aggregateTypePurchaseOrder, po.ID, po.OrgID),
		PONumber:        po.PONumber,
		SupplierID:      po.SupplierID,
	}
}

// PurchaseOrderSubmittedEvent is raised when an order enters the workflow
type PurchaseOrderSubmittedEvent struct {
	shared.BaseDomainEvent
	PONumber         string          `json:"po_number"`
	SubmittedBy      uuid.UUID       `json:"submitted_by"`
	RequiresApproval bool            `json:"requires_approval"`
	Total            decimal.Decimal `json:"total"`
}

// NewPurchaseOrderSubmittedEvent creates a new purchase order submitted event
func NewPurchaseOrderSubmittedEvent(po *PurchaseOrder, submittedBy uuid.UUID, requiresApproval bool) *PurchaseOrderSubmittedEvent {
	return &PurchaseOrderSubmittedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypePurchaseOrderSubmitted, aggregateTypePurchaseOrder, po.ID, po.OrgID),
		PONumber:         po.PONumber,
		SubmittedBy:      submittedBy,
		RequiresApproval: requiresApproval,
		Total:            po.Total,
	}
}

// PurchaseOrderApprovedEvent is raised when a pending order is approved
type PurchaseOrderApprovedEvent struct {
	shared.BaseDomainEvent
	PONumber   string     `json:"po_number"`
	ApprovedBy uuid.UUID  `json:"approved_by"`
	CreatedBy  *uuid.UUID `json:"created_by,omitempty"`
}

// NewPurchaseOrderApprovedEvent creates a new purchase order approved event
func NewPurchaseOrderApprovedEvent(po *PurchaseOrder, approvedBy uuid.UUID) *PurchaseOrderApprovedEvent {
	return &PurchaseOrderApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderApproved, aggregateTypePurchaseOrder, po.ID, po.OrgID),
		PONumber:        po.PONumber,
		ApprovedBy:      approvedBy,
		CreatedBy:       po.CreatedBy,
	}
}

// PurchaseOrderRejectedEvent is raised when a pending order is rejected
type PurchaseOrderRejectedEvent struct {
	shared.BaseDomainEvent
	PONumber   string     `json:"po_number"`
	RejectedBy uuid.UUID  `json:"rejected_by"`
	CreatedBy  *uuid.UUID `json:"created_by,omitempty"`
	Reason     string     `json:"reason"`
}

// NewPurchaseOrderRejectedEvent creates a new purchase order rejected event
func NewPurchaseOrderRejectedEvent(po *PurchaseOrder, rejectedBy uuid.UUID, reason string) *PurchaseOrderRejectedEvent {
	return &PurchaseOrderRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderRejected, aggregateTypePurchaseOrder, po.ID, po.OrgID),
		PONumber:        po.PONumber,
		RejectedBy:      rejectedBy,
		CreatedBy:       po.CreatedBy,
		Reason:          reason,
	}
}

// BulkOrdersCreatedEvent is raised once per bulk creation run
type BulkOrdersCreatedEvent struct {
	shared.BaseDomainEvent
	CreatedBy uuid.UUID   `json:"created_by"`
	POIDs     []uuid.UUID `json:"po_ids"`
	PONumbers []string    `json:"po_numbers"`
}

// NewBulkOrdersCreatedEvent creates a new bulk orders created event.
// The first created order anchors the aggregate reference.
func NewBulkOrdersCreatedEvent(orgID, createdBy uuid.UUID, poIDs []uuid.UUID, poNumbers []string) *BulkOrdersCreatedEvent {
	var anchor uuid.UUID
	if len(poIDs) > 0 {
		anchor = poIDs[0]
	}
	return &BulkOrdersCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBulkOrdersCreated, aggregateTypePurchaseOrder, anchor, orgID),
		CreatedBy:       createdBy,
		POIDs:           poIDs,
		PONumbers:       poNumbers,
	}
}
