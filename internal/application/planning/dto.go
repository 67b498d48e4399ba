package planning

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrpcore/backend/internal/domain/planning"
)

// CreateLineInput is one requested line of a new purchase order
type CreateLineInput struct {
	ProductID            uuid.UUID        `json:"product_id" binding:"required"`
	Quantity             decimal.Decimal  `json:"quantity" binding:"required"`
	UnitPrice            *decimal.Decimal `json:"unit_price,omitempty"`
	DiscountPercent      decimal.Decimal  `json:"discount_percent"`
	ExpectedDeliveryDate *time.Time       `json:"expected_delivery_date,omitempty"`
	Notes                string           `json:"notes,omitempty"`
}

// CreatePurchaseOrderInput is the request to draft a new purchase order
type CreatePurchaseOrderInput struct {
	SupplierID           uuid.UUID         `json:"supplier_id" binding:"required"`
	WarehouseID          *uuid.UUID        `json:"warehouse_id,omitempty"`
	TaxCodeID            *uuid.UUID        `json:"tax_code_id,omitempty"`
	ExpectedDeliveryDate *time.Time        `json:"expected_delivery_date,omitempty"`
	Notes                string            `json:"notes,omitempty"`
	Lines                []CreateLineInput `json:"lines"`
}

// SubmitResult reports the outcome of submitting a purchase order
type SubmitResult struct {
	ID                uuid.UUID `json:"id"`
	PONumber          string    `json:"po_number"`
	Status            string    `json:"status"`
	ApprovalRequired  bool      `json:"approval_required"`
	NotificationSent  bool      `json:"notification_sent"`
	NotificationCount int       `json:"notification_count"`
}

// DecisionResult reports the outcome of an approval decision
type DecisionResult struct {
	ID       uuid.UUID `json:"id"`
	PONumber string    `json:"po_number"`
	Status   string    `json:"status"`
}

// BulkCreateItem is one import row requesting product quantity from a
// supplier. UnitPrice and SupplierID override the catalog defaults when set.
type BulkCreateItem struct {
	ProductCode          string           `json:"product_code"`
	Quantity             decimal.Decimal  `json:"quantity"`
	UnitPrice            *decimal.Decimal `json:"unit_price,omitempty"`
	SupplierID           *uuid.UUID       `json:"supplier_id,omitempty"`
	ExpectedDeliveryDate *time.Time       `json:"expected_delivery_date,omitempty"`
	Notes                string           `json:"notes,omitempty"`
}

// BulkCreateInput is the request for supplier-grouped bulk order creation
type BulkCreateInput struct {
	Items       []BulkCreateItem `json:"items"`
	WarehouseID *uuid.UUID       `json:"warehouse_id,omitempty"`
}

// BulkRowError describes why one import row or supplier group failed
type BulkRowError struct {
	RowIndex    int    `json:"row_index"`
	ProductCode string `json:"product_code,omitempty"`
	Code        string `json:"code"`
	Message     string `json:"message"`
}

// CreatedOrder summarizes one purchase order produced by a bulk run
type CreatedOrder struct {
	ID           uuid.UUID       `json:"id"`
	PONumber     string          `json:"po_number"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	SupplierName string          `json:"supplier_name"`
	LineCount    int             `json:"line_count"`
	Total        decimal.Decimal `json:"total"`
}

// BulkCreateResult reports a bulk creation run. Success means every row
// produced an order line; a partial run still returns the orders it created.
type BulkCreateResult struct {
	Success      bool            `json:"success"`
	Created      []CreatedOrder  `json:"created"`
	Errors       []BulkRowError  `json:"errors"`
	CreatedCount int             `json:"created_count"`
	FailedRows   int             `json:"failed_rows"`
	TotalLines   int             `json:"total_lines"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// BulkStatusItemResult is the per-order outcome of a bulk status update
type BulkStatusItemResult struct {
	ID         uuid.UUID `json:"id"`
	PONumber   string    `json:"po_number,omitempty"`
	Success    bool      `json:"success"`
	FromStatus string    `json:"from_status,omitempty"`
	ToStatus   string    `json:"to_status,omitempty"`
	ErrorCode  string    `json:"error_code,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// BulkStatusResult reports a bulk status update run
type BulkStatusResult struct {
	Action    string                 `json:"action"`
	Requested int                    `json:"requested"`
	Succeeded int                    `json:"succeeded"`
	Failed    int                    `json:"failed"`
	Results   []BulkStatusItemResult `json:"results"`
}

// BulkStatusPreviewItem reports whether an action would apply to one order
type BulkStatusPreviewItem struct {
	ID            uuid.UUID `json:"id"`
	PONumber      string    `json:"po_number,omitempty"`
	CurrentStatus string    `json:"current_status,omitempty"`
	Eligible      bool      `json:"eligible"`
	Reason        string    `json:"reason,omitempty"`
}

// HistoryEntry is one approval audit record in API form
type HistoryEntry struct {
	ID        uuid.UUID `json:"id"`
	Action    string    `json:"action"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	UserRole  string    `json:"user_role,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func historyEntryFromRecord(r planning.ApprovalHistoryRecord) HistoryEntry {
	return HistoryEntry{
		ID:        r.ID,
		Action:    string(r.Action),
		UserID:    r.UserID,
		UserName:  r.UserName,
		UserRole:  r.UserRole,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
	}
}
