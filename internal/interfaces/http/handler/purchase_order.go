package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appplanning "github.com/mrpcore/backend/internal/application/planning"
	"github.com/mrpcore/backend/internal/domain/planning"
	"github.com/mrpcore/backend/internal/domain/shared"
	"github.com/mrpcore/backend/internal/interfaces/http/dto"
)

// PurchaseOrderService is the application surface this handler exposes
type PurchaseOrderService interface {
	CreateDraft(ctx context.Context, orgID, userID uuid.UUID, input appplanning.CreatePurchaseOrderInput) (*planning.PurchaseOrder, error)
	Get(ctx context.Context, orgID, poID uuid.UUID) (*planning.PurchaseOrder, error)
	List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (shared.Paginated[planning.PurchaseOrder], error)
	Submit(ctx context.Context, orgID, poID, userID uuid.UUID) (*appplanning.SubmitResult, error)
	Approve(ctx context.Context, orgID, poID, approverID uuid.UUID, notes string) (*appplanning.DecisionResult, error)
	Reject(ctx context.Context, orgID, poID, approverID uuid.UUID, reason string) (*appplanning.DecisionResult, error)
	Cancel(ctx context.Context, orgID, poID, userID uuid.UUID) (*appplanning.DecisionResult, error)
	History(ctx context.Context, orgID, poID uuid.UUID, filter shared.Filter) (shared.Paginated[appplanning.HistoryEntry], error)
}

// PurchaseOrderHandler serves the purchase order workflow endpoints
type PurchaseOrderHandler struct {
	BaseHandler
	service PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler
func NewPurchaseOrderHandler(service PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service}
}

// Create drafts a new purchase order
// POST /api/v1/purchase-orders
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var input appplanning.CreatePurchaseOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	po, err := h.service.CreateDraft(c.Request.Context(), orgID, userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.NewPurchaseOrderResponse(po))
}

// Get returns one purchase order with its lines
// GET /api/v1/purchase-orders/:id
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	poID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order id")
		return
	}

	po, err := h.service.Get(c.Request.Context(), orgID, poID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewPurchaseOrderResponse(po))
}

// List returns a filtered page of purchase orders
// GET /api/v1/purchase-orders
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}
	if status := c.Query("status"); status != "" {
		filter.Filters["status"] = status
	}
	if supplierID := c.Query("supplier_id"); supplierID != "" {
		id, err := uuid.Parse(supplierID)
		if err != nil {
			h.BadRequest(c, "Invalid supplier id")
			return
		}
		filter.Filters["supplier_id"] = id
	}

	page, err := h.service.List(c.Request.Context(), orgID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.NewPurchaseOrderListResponse(page.Items), page.Total, page.Page, page.PageSize)
}

// Submit moves a draft order into the approval workflow
// POST /api/v1/purchase-orders/:id/submit
func (h *PurchaseOrderHandler) Submit(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	poID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order id")
		return
	}

	result, err := h.service.Submit(c.Request.Context(), orgID, poID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Approve records an approval decision
// POST /api/v1/purchase-orders/:id/approve
func (h *PurchaseOrderHandler) Approve(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	poID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order id")
		return
	}
	var req dto.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Approve(c.Request.Context(), orgID, poID, userID, req.Notes)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Reject records a rejection decision with a mandatory reason
// POST /api/v1/purchase-orders/:id/reject
func (h *PurchaseOrderHandler) Reject(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	poID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order id")
		return
	}
	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Reject(c.Request.Context(), orgID, poID, userID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Cancel cancels an order that has no goods receipts
// POST /api/v1/purchase-orders/:id/cancel
func (h *PurchaseOrderHandler) Cancel(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	poID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order id")
		return
	}

	result, err := h.service.Cancel(c.Request.Context(), orgID, poID, userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// History returns the approval audit trail of one order
// GET /api/v1/purchase-orders/:id/history
func (h *PurchaseOrderHandler) History(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	poID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid purchase order id")
		return
	}
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.service.History(c.Request.Context(), orgID, poID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
