package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mrpcore/backend/internal/domain/planning"
)

// PurchaseOrderLineResponse is one order line in API form
type PurchaseOrderLineResponse struct {
	ID                   uuid.UUID       `json:"id"`
	LineNumber           int             `json:"line_number"`
	ProductID            uuid.UUID       `json:"product_id"`
	Quantity             decimal.Decimal `json:"quantity"`
	UnitPrice            decimal.Decimal `json:"unit_price"`
	PriceSource          string          `json:"price_source"`
	DiscountPercent      decimal.Decimal `json:"discount_percent"`
	LineTotal            decimal.Decimal `json:"line_total"`
	UOM                  string          `json:"uom,omitempty"`
	ExpectedDeliveryDate *time.Time      `json:"expected_delivery_date,omitempty"`
	ReceivedQty          decimal.Decimal `json:"received_qty"`
	Notes                string          `json:"notes,omitempty"`
}

// PurchaseOrderResponse is a purchase order in API form
type PurchaseOrderResponse struct {
	ID                   uuid.UUID                   `json:"id"`
	PONumber             string                      `json:"po_number"`
	SupplierID           uuid.UUID                   `json:"supplier_id"`
	WarehouseID          *uuid.UUID                  `json:"warehouse_id,omitempty"`
	Status               string                      `json:"status"`
	ApprovalStatus       *string                     `json:"approval_status,omitempty"`
	Currency             string                      `json:"currency"`
	TaxRatePercent       decimal.Decimal             `json:"tax_rate_percent"`
	Subtotal             decimal.Decimal             `json:"subtotal"`
	DiscountTotal        decimal.Decimal             `json:"discount_total"`
	TaxAmount            decimal.Decimal             `json:"tax_amount"`
	Total                decimal.Decimal             `json:"total"`
	OrderDate            time.Time                   `json:"order_date"`
	ExpectedDeliveryDate *time.Time                  `json:"expected_delivery_date,omitempty"`
	Notes                string                      `json:"notes,omitempty"`
	SubmittedAt          *time.Time                  `json:"submitted_at,omitempty"`
	ApprovedAt           *time.Time                  `json:"approved_at,omitempty"`
	ApprovalNotes        string                      `json:"approval_notes,omitempty"`
	RejectionReason      string                      `json:"rejection_reason,omitempty"`
	Version              int                         `json:"version"`
	CreatedAt            time.Time                   `json:"created_at"`
	UpdatedAt            time.Time                   `json:"updated_at"`
	Lines                []PurchaseOrderLineResponse `json:"lines,omitempty"`
}

// NewPurchaseOrderResponse maps a domain purchase order to its API form
func NewPurchaseOrderResponse(po *planning.PurchaseOrder) PurchaseOrderResponse {
	resp := PurchaseOrderResponse{
		ID:                   po.ID,
		PONumber:             po.PONumber,
		SupplierID:           po.SupplierID,
		WarehouseID:          po.WarehouseID,
		Status:               po.Status.String(),
		Currency:             string(po.Currency),
		TaxRatePercent:       po.TaxRatePercent,
		Subtotal:             po.Subtotal,
		DiscountTotal:        po.DiscountTotal,
		TaxAmount:            po.TaxAmount,
		Total:                po.Total,
		OrderDate:            po.OrderDate,
		ExpectedDeliveryDate: po.ExpectedDeliveryDate,
		Notes:                po.Notes,
		SubmittedAt:          po.SubmittedAt,
		ApprovedAt:           po.ApprovedAt,
		ApprovalNotes:        po.ApprovalNotes,
		RejectionReason:      po.RejectionReason,
		Version:              po.Version,
		CreatedAt:            po.CreatedAt,
		UpdatedAt:            po.UpdatedAt,
	}
	if po.ApprovalStatus != nil {
		status := string(*po.ApprovalStatus)
		resp.ApprovalStatus = &status
	}
	if len(po.Lines) > 0 {
		resp.Lines = make([]PurchaseOrderLineResponse, 0, len(po.Lines))
		for _, line := range po.Lines {
			resp.Lines = append(resp.Lines, PurchaseOrderLineResponse{
				ID:                   line.ID,
				LineNumber:           line.LineNumber,
				ProductID:            line.ProductID,
				Quantity:             line.Quantity,
				UnitPrice:            line.UnitPrice,
				PriceSource:          string(line.PriceSource),
				DiscountPercent:      line.DiscountPercent,
				LineTotal:            line.LineTotal,
				UOM:                  line.UOM,
				ExpectedDeliveryDate: line.ExpectedDeliveryDate,
				ReceivedQty:          line.ReceivedQty,
				Notes:                line.Notes,
			})
		}
	}
	return resp
}

// NewPurchaseOrderListResponse maps a slice of orders, dropping line detail
func NewPurchaseOrderListResponse(orders []planning.PurchaseOrder) []PurchaseOrderResponse {
	out := make([]PurchaseOrderResponse, 0, len(orders))
	for i := range orders {
		resp := NewPurchaseOrderResponse(&orders[i])
		resp.Lines = nil
		out = append(out, resp)
	}
	return out
}

// ApproveRequest is the body of an approval decision
type ApproveRequest struct {
	Notes string `json:"notes"`
}

// RejectRequest is the body of a rejection decision
type RejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// BulkStatusRequest asks for one action applied to many orders
type BulkStatusRequest struct {
	Action string      `json:"action" binding:"required,oneof=approve reject cancel confirm"`
	IDs    []uuid.UUID `json:"ids" binding:"required"`
}
