package planning

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrpcore/backend/internal/domain/shared"
	"github.com/mrpcore/backend/internal/domain/shared/valueobject"
)

// ApprovalState is the shadow approval marker kept alongside Status.
// It survives later status changes, so an approved order that has moved on
// to confirmed still records that it passed approval.
type ApprovalState string

const (
	ApprovalStatePending  ApprovalState = "pending"
	ApprovalStateApproved ApprovalState = "approved"
	ApprovalStateRejected ApprovalState = "rejected"
)

// PurchaseOrder is the aggregate root of the purchasing workflow
type PurchaseOrder struct {
	shared.OrgAggregateRoot
	PONumber             string                `gorm:"size:50;not null;uniqueIndex:idx_po_org_number,priority:2"`
	SupplierID           uuid.UUID             `gorm:"type:uuid;not null;index"`
	WarehouseID          *uuid.UUID            `gorm:"type:uuid;index"`
	Status               Status                `gorm:"size:20;not null;default:'draft';index"`
	ApprovalStatus       *ApprovalState        `gorm:"size:20"`
	Currency             valueobject.Currency  `gorm:"size:3;not null;default:'PLN'"`
	TaxCodeID            *uuid.UUID            `gorm:"type:uuid"`
	TaxRatePercent       decimal.Decimal       `gorm:"type:decimal(5,2);not null;default:0"`
	PaymentTerms         string                `gorm:"size:100"`
	Subtotal             decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0"`
	DiscountTotal        decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0"`
	TaxAmount            decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0"`
	Total                decimal.Decimal       `gorm:"type:decimal(15,2);not null;default:0"`
	OrderDate            time.Time             `gorm:"not null"`
	ExpectedDeliveryDate *time.Time            `gorm:""`
	Notes                string                `gorm:"type:text"`
	SubmittedBy          *uuid.UUID            `gorm:"type:uuid"`
	SubmittedAt          *time.Time            `gorm:""`
	ApprovedBy           *uuid.UUID            `gorm:"type:uuid"`
	ApprovedAt           *time.Time            `gorm:""`
	ApprovalNotes        string                `gorm:"type:text"`
	RejectionReason      string                `gorm:"type:text"`
	Lines                []PurchaseOrderLine   `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// PurchaseOrderLine is a line item of a purchase order
type PurchaseOrderLine struct {
	shared.BaseEntity
	PurchaseOrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	LineNumber           int             `gorm:"not null"`
	ProductID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity             decimal.Decimal `gorm:"type:decimal(15,4);not null"`
	UnitPrice            decimal.Decimal `gorm:"type:decimal(15,4);not null"`
	PriceSource          PriceSource     `gorm:"size:20;not null;default:'standard'"`
	DiscountPercent      decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	LineTotal            decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	UOM                  string          `gorm:"size:20"`
	ExpectedDeliveryDate *time.Time      `gorm:""`
	ReceivedQty          decimal.Decimal `gorm:"type:decimal(15,4);not null;default:0"`
	Notes                string          `gorm:"type:text"`
}

// TableName specifies the database table name
func (PurchaseOrderLine) TableName() string {
	return "purchase_order_lines"
}

// NewPurchaseOrderLine creates and validates a line item. Quantity must be
// positive and no greater than 999999.99; unit price must be non-negative;
// discount is a percentage between 0 and 100.
func NewPurchaseOrderLine(productID uuid.UUID, quantity, unitPrice, discountPercent decimal.Decimal, source PriceSource) (*PurchaseOrderLine, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID is required")
	}
	if !quantity.IsPositive() || quantity.GreaterThan(maxQuantity) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than 0 and at most 999999.99")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(hundred) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount percent must be between 0 and 100")
	}
	line := &PurchaseOrderLine{
		BaseEntity:      shared.NewBaseEntity(),
		ProductID:       productID,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		PriceSource:     source,
		DiscountPercent: discountPercent,
		ReceivedQty:     decimal.Zero,
	}
	line.LineTotal = lineNet(TotalsLine{
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		DiscountPercent: discountPercent,
	}).Round(2)
	return line, nil
}

// HasReceipts returns true once any quantity has been received against
// the line
func (l *PurchaseOrderLine) HasReceipts() bool {
	return l.ReceivedQty.IsPositive()
}

// NewPurchaseOrder creates a draft purchase order for a supplier
func NewPurchaseOrder(orgID uuid.UUID, poNumber string, supplierID uuid.UUID, currency valueobject.Currency) (*PurchaseOrder, error) {
	if poNumber == "" {
		return nil, shared.NewDomainError("INVALID_PO_NUMBER", "PO number is required")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER", "Supplier ID is required")
	}
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}
	po := &PurchaseOrder{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		PONumber:         poNumber,
		SupplierID:       supplierID,
		Status:           StatusDraft,
		Currency:         currency,
		TaxRatePercent:   decimal.Zero,
		Subtotal:         decimal.Zero,
		DiscountTotal:    decimal.Zero,
		TaxAmount:        decimal.Zero,
		Total:            decimal.Zero,
		OrderDate:        time.Now(),
	}
	po.AddDomainEvent(NewPurchaseOrderCreatedEvent(po))
	return po, nil
}

// SetTaxCode assigns the tax code and its rate snapshot, then recomputes
// totals
func (po *PurchaseOrder) SetTaxCode(taxCodeID *uuid.UUID, ratePercent decimal.Decimal) error {
	if ratePercent.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	po.TaxCodeID = taxCodeID
	po.TaxRatePercent = ratePercent
	po.recalculateTotals()
	return nil
}

// AddLine appends a line item to a draft order. Lines with the same product
// are kept as independent rows.
func (po *PurchaseOrder) AddLine(line *PurchaseOrderLine) error {
	if po.Status != StatusDraft {
		return shared.NewDomainError("NOT_DRAFT", "Lines can only be added to draft purchase orders")
	}
	line.PurchaseOrderID = po.ID
	line.LineNumber = len(po.Lines) + 1
	po.Lines = append(po.Lines, *line)
	po.recalculateTotals()
	return nil
}

// RemoveLine removes a line from a draft order. Lines with received
// quantity cannot be removed.
func (po *PurchaseOrder) RemoveLine(lineID uuid.UUID) error {
	if po.Status != StatusDraft {
		return shared.NewDomainError("NOT_DRAFT", "Lines can only be removed from draft purchase orders")
	}
	for i, line := range po.Lines {
		if line.ID != lineID {
			continue
		}
		if line.HasReceipts() {
			return shared.NewDomainError("LINE_HAS_RECEIPTS", "Cannot remove a line that has received quantity")
		}
		po.Lines = append(po.Lines[:i], po.Lines[i+1:]...)
		for j := range po.Lines {
			po.Lines[j].LineNumber = j + 1
		}
		po.recalculateTotals()
		return nil
	}
	return shared.NewDomainError("LINE_NOT_FOUND", "Purchase order line not found")
}

// recalculateTotals recomputes the monetary summary from current lines.
// The stored Total always equals Subtotal + TaxAmount.
func (po *PurchaseOrder) recalculateTotals() {
	lines := make([]TotalsLine, 0, len(po.Lines))
	for _, l := range po.Lines {
		lines = append(lines, TotalsLine{
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
		})
	}
	totals := CalculateTotals(lines, po.TaxRatePercent)
	po.Subtotal = totals.Subtotal
	po.DiscountTotal = totals.DiscountTotal
	po.TaxAmount = totals.TaxAmount
	po.Total = totals.Total
}

// Totals returns the current monetary summary of the order
func (po *PurchaseOrder) Totals() OrderTotals {
	return OrderTotals{
		Subtotal:      po.Subtotal,
		DiscountTotal: po.DiscountTotal,
		TaxAmount:     po.TaxAmount,
		Total:         po.Total,
	}
}

// HasReceivedLines returns true if any line has received quantity
func (po *PurchaseOrder) HasReceivedLines() bool {
	for _, l := range po.Lines {
		if l.HasReceipts() {
			return true
		}
	}
	return false
}

// Submit moves a draft order into the workflow. When approval is required
// the order goes to pending_approval, otherwise straight to submitted. The
// gate decision governs which edge is legal: draft -> submitted is only
// forbidden for an order that actually requires approval, so orders below
// the threshold skip the approval queue even when the mode is on.
func (po *PurchaseOrder) Submit(userID uuid.UUID, requiresApproval bool) error {
	if po.Status != StatusDraft {
		return shared.NewDomainError("NOT_DRAFT", "Only draft purchase orders can be submitted")
	}
	if len(po.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot submit a purchase order without line items")
	}
	target := StatusSubmitted
	if requiresApproval {
		target = StatusPendingApproval
	}
	if err := ValidateTransition(po.Status, target, requiresApproval); err != nil {
		return err
	}
	now := time.Now()
	po.Status = target
	po.SubmittedBy = &userID
	po.SubmittedAt = &now
	if requiresApproval {
		pending := ApprovalStatePending
		po.ApprovalStatus = &pending
	}
	po.SetUpdatedBy(userID)
	po.IncrementVersion()
	po.AddDomainEvent(NewPurchaseOrderSubmittedEvent(po, userID, requiresApproval))
	return nil
}

// Approve records an approval decision on a pending order
func (po *PurchaseOrder) Approve(approverID uuid.UUID, notes string) error {
	if po.Status != StatusPendingApproval {
		return shared.NewDomainError("NOT_PENDING_APPROVAL", "Only purchase orders pending approval can be approved")
	}
	if err := ValidateTransition(po.Status, StatusApproved, true); err != nil {
		return err
	}
	now := time.Now()
	approved := ApprovalStateApproved
	po.Status = StatusApproved
	po.ApprovalStatus = &approved
	po.ApprovedBy = &approverID
	po.ApprovedAt = &now
	po.ApprovalNotes = notes
	po.SetUpdatedBy(approverID)
	po.IncrementVersion()
	po.AddDomainEvent(NewPurchaseOrderApprovedEvent(po, approverID))
	return nil
}

// Reject records a rejection decision with a sanitized reason. The order
// returns to the rejected status, from which the creator may rework it
// back to draft.
func (po *PurchaseOrder) Reject(approverID uuid.UUID, reason string) error {
	if po.Status != StatusPendingApproval {
		return shared.NewDomainError("NOT_PENDING_APPROVAL", "Only purchase orders pending approval can be rejected")
	}
	if err := ValidateTransition(po.Status, StatusRejected, true); err != nil {
		return err
	}
	rejected := ApprovalStateRejected
	po.Status = StatusRejected
	po.ApprovalStatus = &rejected
	po.RejectionReason = reason
	po.SetUpdatedBy(approverID)
	po.IncrementVersion()
	po.AddDomainEvent(NewPurchaseOrderRejectedEvent(po, approverID, reason))
	return nil
}

// ApplyBulkAction applies a batch status action. Bulk actions use their own
// allow-list rather than the full state graph: bulk approve may lift a
// submitted order straight to approved, and bulk reject discards the order
// as cancelled.
func (po *PurchaseOrder) ApplyBulkAction(action BulkAction, userID uuid.UUID) error {
	if !action.IsValid() {
		return shared.NewDomainError("INVALID_ACTION", "Unknown bulk action: "+string(action))
	}
	if !action.AllowsSource(po.Status) {
		return shared.NewDomainError("INVALID_STATUS",
			"Cannot "+string(action)+" a purchase order in status "+po.Status.String())
	}
	now := time.Now()
	switch action {
	case BulkActionApprove:
		approved := ApprovalStateApproved
		po.ApprovalStatus = &approved
		po.ApprovedBy = &userID
		po.ApprovedAt = &now
		po.AddDomainEvent(NewPurchaseOrderApprovedEvent(po, userID))
	case BulkActionReject:
		rejected := ApprovalStateRejected
		po.ApprovalStatus = &rejected
		po.AddDomainEvent(NewPurchaseOrderRejectedEvent(po, userID, ""))
	}
	po.Status = action.TargetStatus()
	po.SetUpdatedBy(userID)
	po.IncrementVersion()
	return nil
}

// TransitionTo applies a generic status change after validating the edge.
// Submit, Approve and Reject have dedicated methods; this covers the
// remaining workflow moves (confirm, receiving, close, cancel, rework).
func (po *PurchaseOrder) TransitionTo(target Status, userID uuid.UUID, approvalRequired bool) error {
	if err := ValidateTransition(po.Status, target, approvalRequired); err != nil {
		return err
	}
	po.Status = target
	po.SetUpdatedBy(userID)
	po.IncrementVersion()
	return nil
}
