package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrpcore/backend/internal/domain/planning"
	"github.com/mrpcore/backend/internal/domain/shared"
)

// defaultDeliveryLeadTime is applied when a draft carries no expected
// delivery date
const defaultDeliveryLeadTime = 7 * 24 * time.Hour

// PurchaseOrderService implements the purchase order workflow use cases
type PurchaseOrderService struct {
	poRepo        planning.PurchaseOrderRepository
	historyRepo   planning.ApprovalHistoryRepository
	supplierRepo  planning.SupplierRepository
	taxCodeRepo   planning.TaxCodeRepository
	receiptRepo   planning.ReceiptRepository
	settings      planning.SettingsProvider
	identity      planning.IdentityProvider
	notifier      planning.Notifier
	priceResolver *PriceResolver
	publisher     shared.EventPublisher
	logger        *zap.Logger
}

// NewPurchaseOrderService creates a new purchase order service
func NewPurchaseOrderService(
	poRepo planning.PurchaseOrderRepository,
	historyRepo planning.ApprovalHistoryRepository,
	supplierRepo planning.SupplierRepository,
	taxCodeRepo planning.TaxCodeRepository,
	receiptRepo planning.ReceiptRepository,
	settings planning.SettingsProvider,
	identity planning.IdentityProvider,
	notifier planning.Notifier,
	priceResolver *PriceResolver,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		poRepo:        poRepo,
		historyRepo:   historyRepo,
		supplierRepo:  supplierRepo,
		taxCodeRepo:   taxCodeRepo,
		receiptRepo:   receiptRepo,
		settings:      settings,
		identity:      identity,
		notifier:      notifier,
		priceResolver: priceResolver,
		publisher:     publisher,
		logger:        logger,
	}
}

// CreateDraft creates a draft purchase order with resolved line prices
func (s *PurchaseOrderService) CreateDraft(ctx context.Context, orgID, userID uuid.UUID, input CreatePurchaseOrderInput) (*planning.PurchaseOrder, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, orgID, input.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, shared.NewDomainError("SUPPLIER_NOT_FOUND", "Supplier not found")
	}

	poNumber, err := s.poRepo.GenerateOrderNumber(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate order number: %w", err)
	}

	po, err := planning.NewPurchaseOrder(orgID, poNumber, supplier.ID, supplier.OrderCurrency())
	if err != nil {
		return nil, err
	}
	po.SetCreatedBy(userID)
	po.WarehouseID = input.WarehouseID
	po.PaymentTerms = supplier.PaymentTerms
	po.Notes = input.Notes
	if input.ExpectedDeliveryDate != nil {
		po.ExpectedDeliveryDate = input.ExpectedDeliveryDate
	} else {
		d := time.Now().Add(defaultDeliveryLeadTime)
		po.ExpectedDeliveryDate = &d
	}

	taxCode, err := s.resolveTaxCode(ctx, orgID, input.TaxCodeID, supplier)
	if err != nil {
		return nil, err
	}
	if taxCode != nil {
		if err := po.SetTaxCode(&taxCode.ID, taxCode.RatePercent); err != nil {
			return nil, err
		}
	}

	for _, lineInput := range input.Lines {
		resolved, err := s.priceResolver.Resolve(ctx, orgID, lineInput.ProductID, supplier.ID, lineInput.UnitPrice)
		if err != nil {
			return nil, err
		}
		line, err := planning.NewPurchaseOrderLine(lineInput.ProductID, lineInput.Quantity, resolved.UnitPrice, lineInput.DiscountPercent, resolved.Source)
		if err != nil {
			return nil, err
		}
		line.ExpectedDeliveryDate = lineInput.ExpectedDeliveryDate
		line.Notes = lineInput.Notes
		if err := po.AddLine(line); err != nil {
			return nil, err
		}
	}

	if err := s.poRepo.Save(ctx, po); err != nil {
		return nil, fmt.Errorf("failed to save purchase order: %w", err)
	}
	s.publishEvents(ctx, po)
	return po, nil
}

// resolveTaxCode picks the tax code: explicit request, then the supplier's
// default, then the organization default. No match means no tax.
func (s *PurchaseOrderService) resolveTaxCode(ctx context.Context, orgID uuid.UUID, requested *uuid.UUID, supplier *planning.Supplier) (*planning.TaxCode, error) {
	if requested != nil {
		tc, err := s.taxCodeRepo.FindByID(ctx, orgID, *requested)
		if err != nil {
			return nil, err
		}
		if tc == nil {
			return nil, shared.NewDomainError("TAX_CODE_NOT_FOUND", "Tax code not found")
		}
		return tc, nil
	}
	if supplier.TaxCodeID != nil {
		if tc, err := s.taxCodeRepo.FindByID(ctx, orgID, *supplier.TaxCodeID); err == nil && tc != nil {
			return tc, nil
		}
	}
	return s.taxCodeRepo.FindDefault(ctx, orgID)
}

// Get loads a purchase order with its lines
func (s *PurchaseOrderService) Get(ctx context.Context, orgID, poID uuid.UUID) (*planning.PurchaseOrder, error) {
	po, err := s.poRepo.FindByID(ctx, orgID, poID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, shared.ErrNotFound
	}
	return po, nil
}

// List returns a page of purchase orders
func (s *PurchaseOrderService) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (shared.Paginated[planning.PurchaseOrder], error) {
	return s.poRepo.List(ctx, orgID, filter)
}

// Submit moves a draft order into the workflow. The approval gate decides
// whether it lands in submitted or pending_approval; approvers are notified
// on a best effort basis.
func (s *PurchaseOrderService) Submit(ctx context.Context, orgID, poID, userID uuid.UUID) (*SubmitResult, error) {
	po, err := s.Get(ctx, orgID, poID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.GetPlanningSettings(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow settings: %w", err)
	}

	requiresApproval := planning.CheckApprovalRequired(po.Total, settings)
	if err := po.Submit(userID, requiresApproval); err != nil {
		return nil, err
	}

	updated, err := s.poRepo.UpdateWhereStatus(ctx, po, planning.StatusDraft)
	if err != nil {
		return nil, fmt.Errorf("failed to update purchase order: %w", err)
	}
	if !updated {
		return nil, shared.ErrConcurrencyConflict
	}

	s.appendHistory(ctx, orgID, po.ID, planning.HistoryActionSubmitted, userID, "")
	s.publishEvents(ctx, po)

	result := &SubmitResult{
		ID:               po.ID,
		PONumber:         po.PONumber,
		Status:           po.Status.String(),
		ApprovalRequired: requiresApproval,
	}
	if requiresApproval {
		result.NotificationSent, result.NotificationCount = s.notifyApprovers(ctx, orgID, po, settings)
	}
	return result, nil
}

// Approve records an approval decision. The caller's role must be in the
// configured approver set; any failure to resolve the role denies the
// action.
func (s *PurchaseOrderService) Approve(ctx context.Context, orgID, poID, approverID uuid.UUID, notes string) (*DecisionResult, error) {
	po, err := s.Get(ctx, orgID, poID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.GetPlanningSettings(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow settings: %w", err)
	}
	approver, err := s.identity.ResolveUser(ctx, orgID, approverID)
	if err != nil || approver == nil {
		return nil, shared.NewDomainError("FORBIDDEN", "Not authorized to approve purchase orders")
	}
	if !settings.RoleCanApprove(approver.Role) {
		return nil, shared.NewDomainError("FORBIDDEN", "Not authorized to approve purchase orders")
	}

	if po.Status == planning.StatusApproved {
		return nil, shared.NewDomainError("ALREADY_APPROVED", "Purchase order is already approved")
	}

	normalizedNotes, err := planning.NormalizeApprovalNotes(notes)
	if err != nil {
		return nil, err
	}
	if err := po.Approve(approverID, normalizedNotes); err != nil {
		return nil, err
	}

	updated, err := s.poRepo.UpdateWhereStatus(ctx, po, planning.StatusPendingApproval)
	if err != nil {
		return nil, fmt.Errorf("failed to update purchase order: %w", err)
	}
	if !updated {
		// another approver processed the order first
		return nil, shared.NewDomainError("ALREADY_APPROVED", "Purchase order was already processed by another approver")
	}

	s.appendHistoryAs(ctx, orgID, po.ID, planning.HistoryActionApproved, approver, normalizedNotes)
	s.publishEvents(ctx, po)
	s.notifyCreator(ctx, po, fmt.Sprintf("Purchase order %s has been approved", po.PONumber))

	return &DecisionResult{ID: po.ID, PONumber: po.PONumber, Status: po.Status.String()}, nil
}

// Reject records a rejection with a mandatory reason. The reason is
// sanitized before it is stored or embedded in the creator's notification.
func (s *PurchaseOrderService) Reject(ctx context.Context, orgID, poID, approverID uuid.UUID, reason string) (*DecisionResult, error) {
	po, err := s.Get(ctx, orgID, poID)
	if err != nil {
		return nil, err
	}

	settings, err := s.settings.GetPlanningSettings(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load workflow settings: %w", err)
	}
	approver, err := s.identity.ResolveUser(ctx, orgID, approverID)
	if err != nil || approver == nil {
		return nil, shared.NewDomainError("FORBIDDEN", "Not authorized to reject purchase orders")
	}
	if !settings.RoleCanApprove(approver.Role) {
		return nil, shared.NewDomainError("FORBIDDEN", "Not authorized to reject purchase orders")
	}

	sanitized, err := planning.NormalizeRejectionReason(reason)
	if err != nil {
		return nil, err
	}
	if err := po.Reject(approverID, sanitized); err != nil {
		return nil, err
	}

	updated, err := s.poRepo.UpdateWhereStatus(ctx, po, planning.StatusPendingApproval)
	if err != nil {
		return nil, fmt.Errorf("failed to update purchase order: %w", err)
	}
	if !updated {
		return nil, shared.NewDomainError("ALREADY_PROCESSED", "Purchase order was already processed by another approver")
	}

	s.appendHistoryAs(ctx, orgID, po.ID, planning.HistoryActionRejected, approver, sanitized)
	s.publishEvents(ctx, po)
	s.notifyCreator(ctx, po, fmt.Sprintf("Purchase order %s was rejected: %s", po.PONumber, sanitized))

	return &DecisionResult{ID: po.ID, PONumber: po.PONumber, Status: po.Status.String()}, nil
}

// Cancel cancels an order that has no posted receipts
func (s *PurchaseOrderService) Cancel(ctx context.Context, orgID, poID, userID uuid.UUID) (*DecisionResult, error) {
	po, err := s.Get(ctx, orgID, poID)
	if err != nil {
		return nil, err
	}

	receipts, err := s.receiptRepo.CountByPurchaseOrder(ctx, orgID, poID)
	if err != nil {
		return nil, fmt.Errorf("failed to check receipts: %w", err)
	}
	if receipts > 0 {
		return nil, shared.NewDomainError("HAS_RECEIPTS", "Cannot cancel a purchase order with posted receipts")
	}

	from := po.Status
	if err := po.TransitionTo(planning.StatusCancelled, userID, false); err != nil {
		return nil, err
	}
	updated, err := s.poRepo.UpdateWhereStatus(ctx, po, from)
	if err != nil {
		return nil, fmt.Errorf("failed to update purchase order: %w", err)
	}
	if !updated {
		return nil, shared.ErrConcurrencyConflict
	}
	return &DecisionResult{ID: po.ID, PONumber: po.PONumber, Status: po.Status.String()}, nil
}

// History returns the approval audit trail of an order, newest first
func (s *PurchaseOrderService) History(ctx context.Context, orgID, poID uuid.UUID, filter shared.Filter) (shared.Paginated[HistoryEntry], error) {
	page, err := s.historyRepo.ListByPurchaseOrder(ctx, orgID, poID, filter)
	if err != nil {
		return shared.Paginated[HistoryEntry]{}, err
	}
	entries := make([]HistoryEntry, 0, len(page.Items))
	for _, r := range page.Items {
		entries = append(entries, historyEntryFromRecord(r))
	}
	return shared.NewPaginated(entries, page.Total, page.Page, page.PageSize), nil
}

// appendHistory records a workflow decision, resolving the acting user's
// display data. History failures are logged, not surfaced: the state change
// has already been committed.
func (s *PurchaseOrderService) appendHistory(ctx context.Context, orgID, poID uuid.UUID, action planning.HistoryAction, userID uuid.UUID, notes string) {
	user, err := s.identity.ResolveUser(ctx, orgID, userID)
	if err != nil || user == nil {
		user = &planning.OrgUser{ID: userID}
	}
	s.appendHistoryAs(ctx, orgID, poID, action, user, notes)
}

func (s *PurchaseOrderService) appendHistoryAs(ctx context.Context, orgID, poID uuid.UUID, action planning.HistoryAction, user *planning.OrgUser, notes string) {
	record := planning.NewApprovalHistoryRecord(orgID, poID, action, user.ID, user.Name, string(user.Role), notes)
	if err := s.historyRepo.Append(ctx, record); err != nil {
		s.logger.Error("failed to append approval history",
			zap.String("po_id", poID.String()),
			zap.String("action", string(action)),
			zap.Error(err))
	}
}

// notifyApprovers sends a best effort notification to every member holding
// an approver role. Returns whether anything was sent and to how many
// recipients.
func (s *PurchaseOrderService) notifyApprovers(ctx context.Context, orgID uuid.UUID, po *planning.PurchaseOrder, settings *planning.PlanningSettings) (bool, int) {
	recipients, err := s.identity.FindUserIDsByRoles(ctx, orgID, settings.ApproverRoles())
	if err != nil {
		s.logger.Warn("failed to resolve approvers for notification",
			zap.String("po_number", po.PONumber), zap.Error(err))
		return false, 0
	}
	if len(recipients) == 0 {
		return false, 0
	}
	err = s.notifier.Notify(ctx, planning.Notification{
		OrgID:           orgID,
		RecipientIDs:    recipients,
		PurchaseOrderID: po.ID,
		Title:           "Purchase order awaiting approval",
		Message:         fmt.Sprintf("Purchase order %s (total %s %s) requires your approval", po.PONumber, po.Total.StringFixed(2), po.Currency),
	})
	if err != nil {
		s.logger.Warn("failed to notify approvers",
			zap.String("po_number", po.PONumber), zap.Error(err))
		return false, 0
	}
	return true, len(recipients)
}

// notifyCreator tells the order's creator about a decision, best effort
func (s *PurchaseOrderService) notifyCreator(ctx context.Context, po *planning.PurchaseOrder, message string) {
	recipient := po.CreatedBy
	if recipient == nil {
		recipient = po.SubmittedBy
	}
	if recipient == nil {
		return
	}
	err := s.notifier.Notify(ctx, planning.Notification{
		OrgID:           po.OrgID,
		RecipientIDs:    []uuid.UUID{*recipient},
		PurchaseOrderID: po.ID,
		Title:           "Purchase order decision",
		Message:         message,
	})
	if err != nil {
		s.logger.Warn("failed to notify creator",
			zap.String("po_number", po.PONumber), zap.Error(err))
	}
}

// publishEvents publishes and clears the aggregate's pending events
func (s *PurchaseOrderService) publishEvents(ctx context.Context, po *planning.PurchaseOrder) {
	events := po.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Error("failed to publish domain events",
			zap.String("po_number", po.PONumber), zap.Error(err))
	}
	po.ClearDomainEvents()
}
