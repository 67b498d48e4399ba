package planning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mrpcore/backend/internal/domain/planning"
	"github.com/mrpcore/backend/internal/domain/shared"
)

const (
	// maxBulkCreateRows caps a single bulk creation request
	maxBulkCreateRows = 500
	// maxBulkStatusIDs caps a single bulk status update request
	maxBulkStatusIDs = 100
)

// BulkService implements bulk order creation and bulk status updates
type BulkService struct {
	poRepo              planning.PurchaseOrderRepository
	historyRepo         planning.ApprovalHistoryRepository
	productRepo         planning.ProductRepository
	supplierRepo        planning.SupplierRepository
	supplierProductRepo planning.SupplierProductRepository
	warehouseRepo       planning.WarehouseRepository
	taxCodeRepo         planning.TaxCodeRepository
	receiptRepo         planning.ReceiptRepository
	identity            planning.IdentityProvider
	publisher           shared.EventPublisher
	logger              *zap.Logger
}

// NewBulkService creates a new bulk service
func NewBulkService(
	poRepo planning.PurchaseOrderRepository,
	historyRepo planning.ApprovalHistoryRepository,
	productRepo planning.ProductRepository,
	supplierRepo planning.SupplierRepository,
	supplierProductRepo planning.SupplierProductRepository,
	warehouseRepo planning.WarehouseRepository,
	taxCodeRepo planning.TaxCodeRepository,
	receiptRepo planning.ReceiptRepository,
	identity planning.IdentityProvider,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *BulkService {
	return &BulkService{
		poRepo:              poRepo,
		historyRepo:         historyRepo,
		productRepo:         productRepo,
		supplierRepo:        supplierRepo,
		supplierProductRepo: supplierProductRepo,
		warehouseRepo:       warehouseRepo,
		taxCodeRepo:         taxCodeRepo,
		receiptRepo:         receiptRepo,
		identity:            identity,
		publisher:           publisher,
		logger:              logger,
	}
}

// bulkRow is a validated input row joined with its catalog lookups
type bulkRow struct {
	index      int
	item       BulkCreateItem
	product    planning.Product
	supplierID uuid.UUID
	// linkPrice is the supplier price when the row's supplier is the
	// product's default supplier
	linkPrice *decimal.Decimal
}

// BulkCreate turns import rows into purchase orders grouped by supplier.
// Rows that fail validation or lookup are reported individually while the
// remaining rows proceed. Each supplier group is created independently: if
// its line insert fails the already-created header is deleted so no empty
// order survives. A missing warehouse fails the whole request since every
// order needs a delivery target.
func (s *BulkService) BulkCreate(ctx context.Context, orgID, userID uuid.UUID, input BulkCreateInput) (*BulkCreateResult, error) {
	if len(input.Items) == 0 {
		return nil, shared.NewDomainError("NO_ROWS", "At least one row is required")
	}
	if len(input.Items) > maxBulkCreateRows {
		return nil, shared.NewDomainError("TOO_MANY_ROWS",
			fmt.Sprintf("At most %d rows may be imported at once", maxBulkCreateRows))
	}

	result := &BulkCreateResult{
		Created:     []CreatedOrder{},
		Errors:      []BulkRowError{},
		TotalAmount: decimal.Zero,
	}

	// the warehouse is resolved before any row work: without a delivery
	// target nothing can be created
	warehouse, err := s.resolveWarehouse(ctx, orgID, input.WarehouseID)
	if err != nil {
		return nil, err
	}

	valid := s.validateRows(input.Items, result)
	valid, err = s.attachProducts(ctx, orgID, valid, result)
	if err != nil {
		return nil, err
	}
	valid, err = s.attachSuppliers(ctx, orgID, valid, result)
	if err != nil {
		return nil, err
	}

	defaultTax, err := s.taxCodeRepo.FindDefault(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load default tax code: %w", err)
	}

	groups, order := groupBySupplier(valid)
	suppliers, err := s.loadSuppliers(ctx, orgID, order)
	if err != nil {
		return nil, err
	}

	var createdIDs []uuid.UUID
	var createdNumbers []string
	for _, supplierID := range order {
		rows := groups[supplierID]
		supplier, ok := suppliers[supplierID]
		if !ok {
			s.failGroup(result, rows, "SUPPLIER_NOT_FOUND", "Supplier not found")
			continue
		}
		created, ok := s.createGroupOrder(ctx, orgID, userID, supplier, warehouse, defaultTax, rows, result)
		if ok {
			result.Created = append(result.Created, *created)
			result.TotalLines += created.LineCount
			result.TotalAmount = result.TotalAmount.Add(created.Total)
			createdIDs = append(createdIDs, created.ID)
			createdNumbers = append(createdNumbers, created.PONumber)
		}
	}

	if len(createdIDs) > 0 {
		event := planning.NewBulkOrdersCreatedEvent(orgID, userID, createdIDs, createdNumbers)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("failed to publish bulk creation event", zap.Error(err))
		}
	}

	result.CreatedCount = len(result.Created)
	result.FailedRows = len(result.Errors)
	result.Success = len(result.Errors) == 0
	return result, nil
}

// resolveWarehouse picks the requested warehouse or falls back to the
// organization's first active one
func (s *BulkService) resolveWarehouse(ctx context.Context, orgID uuid.UUID, requested *uuid.UUID) (*planning.Warehouse, error) {
	if requested != nil {
		wh, err := s.warehouseRepo.FindByID(ctx, orgID, *requested)
		if err != nil {
			return nil, fmt.Errorf("failed to load warehouse: %w", err)
		}
		if wh == nil {
			return nil, shared.NewDomainError("WAREHOUSE_NOT_FOUND", "Warehouse not found")
		}
		return wh, nil
	}
	wh, err := s.warehouseRepo.FirstActive(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load warehouse: %w", err)
	}
	if wh == nil {
		return nil, shared.NewDomainError("NO_WAREHOUSE", "No active warehouse available for delivery")
	}
	return wh, nil
}

// validateRows performs per-row input validation and returns the surviving
// rows
func (s *BulkService) validateRows(items []BulkCreateItem, result *BulkCreateResult) []bulkRow {
	valid := make([]bulkRow, 0, len(items))
	for i, item := range items {
		if item.ProductCode == "" {
			result.Errors = append(result.Errors, BulkRowError{
				RowIndex: i, Code: "PRODUCT_CODE_REQUIRED", Message: "Product code is required",
			})
			continue
		}
		if !item.Quantity.IsPositive() || item.Quantity.GreaterThan(decimal.RequireFromString("999999.99")) {
			result.Errors = append(result.Errors, BulkRowError{
				RowIndex: i, ProductCode: item.ProductCode,
				Code: "INVALID_QUANTITY", Message: "Quantity must be greater than 0 and at most 999999.99",
			})
			continue
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			result.Errors = append(result.Errors, BulkRowError{
				RowIndex: i, ProductCode: item.ProductCode,
				Code: "INVALID_PRICE", Message: "Unit price cannot be negative",
			})
			continue
		}
		valid = append(valid, bulkRow{index: i, item: item})
	}
	return valid
}

// attachProducts joins rows with their catalog products via one batch lookup
func (s *BulkService) attachProducts(ctx context.Context, orgID uuid.UUID, rows []bulkRow, result *BulkCreateResult) ([]bulkRow, error) {
	if len(rows) == 0 {
		return rows, nil
	}
	codes := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.item.ProductCode]; !ok {
			seen[r.item.ProductCode] = struct{}{}
			codes = append(codes, r.item.ProductCode)
		}
	}
	products, err := s.productRepo.FindByCodes(ctx, orgID, codes)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	byCode := make(map[string]planning.Product, len(products))
	for _, p := range products {
		byCode[p.Code] = p
	}

	out := rows[:0]
	for _, r := range rows {
		product, ok := byCode[r.item.ProductCode]
		if !ok {
			result.Errors = append(result.Errors, BulkRowError{
				RowIndex: r.index, ProductCode: r.item.ProductCode,
				Code: "PRODUCT_NOT_FOUND", Message: "Product code not found: " + r.item.ProductCode,
			})
			continue
		}
		r.product = product
		out = append(out, r)
	}
	return out, nil
}

// attachSuppliers resolves each row's supplier: an explicit override wins,
// otherwise the product's default supplier link. Rows without either are
// reported and dropped.
func (s *BulkService) attachSuppliers(ctx context.Context, orgID uuid.UUID, rows []bulkRow, result *BulkCreateResult) ([]bulkRow, error) {
	if len(rows) == 0 {
		return rows, nil
	}
	productIDs := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		productIDs = append(productIDs, r.product.ID)
	}
	links, err := s.supplierProductRepo.FindDefaultsByProducts(ctx, orgID, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier links: %w", err)
	}
	defaultLink := make(map[uuid.UUID]planning.SupplierProduct, len(links))
	for _, l := range links {
		defaultLink[l.ProductID] = l
	}

	out := rows[:0]
	for _, r := range rows {
		if r.item.SupplierID != nil {
			r.supplierID = *r.item.SupplierID
			// an override supplier may still have a price list entry
			link, err := s.supplierProductRepo.FindBySupplierAndProduct(ctx, orgID, r.supplierID, r.product.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to load supplier price: %w", err)
			}
			if link != nil {
				r.linkPrice = link.UnitPrice
			}
			out = append(out, r)
			continue
		}
		link, ok := defaultLink[r.product.ID]
		if !ok {
			result.Errors = append(result.Errors, BulkRowError{
				RowIndex: r.index, ProductCode: r.item.ProductCode,
				Code: "NO_DEFAULT_SUPPLIER", Message: "Product has no default supplier: " + r.item.ProductCode,
			})
			continue
		}
		r.supplierID = link.SupplierID
		r.linkPrice = link.UnitPrice
		out = append(out, r)
	}
	return out, nil
}

// groupBySupplier groups rows by supplier, preserving first-seen order
func groupBySupplier(rows []bulkRow) (map[uuid.UUID][]bulkRow, []uuid.UUID) {
	groups := make(map[uuid.UUID][]bulkRow)
	var order []uuid.UUID
	for _, r := range rows {
		if _, ok := groups[r.supplierID]; !ok {
			order = append(order, r.supplierID)
		}
		groups[r.supplierID] = append(groups[r.supplierID], r)
	}
	return groups, order
}

func (s *BulkService) loadSuppliers(ctx context.Context, orgID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]planning.Supplier, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]planning.Supplier{}, nil
	}
	suppliers, err := s.supplierRepo.FindByIDs(ctx, orgID, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load suppliers: %w", err)
	}
	byID := make(map[uuid.UUID]planning.Supplier, len(suppliers))
	for _, sp := range suppliers {
		byID[sp.ID] = sp
	}
	return byID, nil
}

// failGroup records one error per row of a failed supplier group
func (s *BulkService) failGroup(result *BulkCreateResult, rows []bulkRow, code, message string) {
	for _, r := range rows {
		result.Errors = append(result.Errors, BulkRowError{
			RowIndex: r.index, ProductCode: r.item.ProductCode,
			Code: code, Message: message,
		})
	}
}

// createGroupOrder creates one purchase order for a supplier group. The
// header and lines are inserted separately; a failed line insert deletes
// the orphaned header before the error is reported.
func (s *BulkService) createGroupOrder(
	ctx context.Context,
	orgID, userID uuid.UUID,
	supplier planning.Supplier,
	warehouse *planning.Warehouse,
	defaultTax *planning.TaxCode,
	rows []bulkRow,
	result *BulkCreateResult,
) (*CreatedOrder, bool) {
	poNumber, err := s.poRepo.GenerateOrderNumber(ctx, orgID)
	if err != nil {
		s.failGroup(result, rows, "NUMBER_GENERATION_FAILED", "Failed to generate order number")
		return nil, false
	}

	po, err := planning.NewPurchaseOrder(orgID, poNumber, supplier.ID, supplier.OrderCurrency())
	if err != nil {
		s.failGroup(result, rows, "CREATE_FAILED", err.Error())
		return nil, false
	}
	po.SetCreatedBy(userID)
	po.WarehouseID = &warehouse.ID
	po.PaymentTerms = supplier.PaymentTerms
	delivery := time.Now().Add(defaultDeliveryLeadTime)
	po.ExpectedDeliveryDate = &delivery

	taxCode := defaultTax
	if supplier.TaxCodeID != nil {
		if tc, err := s.taxCodeRepo.FindByID(ctx, orgID, *supplier.TaxCodeID); err == nil && tc != nil {
			taxCode = tc
		}
	}
	if taxCode != nil {
		if err := po.SetTaxCode(&taxCode.ID, taxCode.RatePercent); err != nil {
			s.failGroup(result, rows, "CREATE_FAILED", err.Error())
			return nil, false
		}
	}

	lineRows := make([]bulkRow, 0, len(rows))
	for _, r := range rows {
		resolved := planning.ResolvePrice(r.item.UnitPrice, r.linkPrice, r.product.StdPrice)
		line, err := planning.NewPurchaseOrderLine(r.product.ID, r.item.Quantity, resolved.UnitPrice, decimal.Zero, resolved.Source)
		if err != nil {
			result.Errors = append(result.Errors, BulkRowError{
				RowIndex: r.index, ProductCode: r.item.ProductCode,
				Code: "INVALID_LINE", Message: err.Error(),
			})
			continue
		}
		line.UOM = r.product.UOM
		line.Notes = r.item.Notes
		if r.item.ExpectedDeliveryDate != nil {
			line.ExpectedDeliveryDate = r.item.ExpectedDeliveryDate
		}
		if err := po.AddLine(line); err != nil {
			result.Errors = append(result.Errors, BulkRowError{
				RowIndex: r.index, ProductCode: r.item.ProductCode,
				Code: "INVALID_LINE", Message: err.Error(),
			})
			continue
		}
		lineRows = append(lineRows, r)
	}
	if len(po.Lines) == 0 {
		return nil, false
	}

	if err := s.poRepo.CreateHeader(ctx, po); err != nil {
		s.logger.Error("failed to create purchase order header",
			zap.String("po_number", poNumber), zap.Error(err))
		s.failGroup(result, lineRows, "CREATE_FAILED", "Failed to create purchase order")
		return nil, false
	}
	lines := make([]planning.PurchaseOrderLine, len(po.Lines))
	copy(lines, po.Lines)
	if err := s.poRepo.CreateLines(ctx, lines); err != nil {
		s.logger.Error("failed to create purchase order lines",
			zap.String("po_number", poNumber), zap.Error(err))
		if delErr := s.poRepo.DeleteHeader(ctx, orgID, po.ID); delErr != nil {
			s.logger.Error("failed to delete orphaned purchase order header",
				zap.String("po_number", poNumber), zap.Error(delErr))
		}
		s.failGroup(result, lineRows, "CREATE_FAILED", "Failed to create purchase order lines")
		return nil, false
	}

	return &CreatedOrder{
		ID:           po.ID,
		PONumber:     po.PONumber,
		SupplierID:   supplier.ID,
		SupplierName: supplier.Name,
		LineCount:    len(po.Lines),
		Total:        po.Total,
	}, true
}

// BulkUpdateStatus applies one action to a batch of orders. Each order is
// processed independently; per-order failures never abort the batch.
// Results carries exactly one entry per input id: a repeated id is applied
// on its first occurrence and every later occurrence fails as a duplicate.
func (s *BulkService) BulkUpdateStatus(ctx context.Context, orgID, userID uuid.UUID, action planning.BulkAction, ids []uuid.UUID) (*BulkStatusResult, error) {
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", "Unknown bulk action: "+string(action))
	}
	if len(ids) == 0 {
		return nil, shared.NewDomainError("NO_IDS", "At least one purchase order id is required")
	}
	if len(ids) > maxBulkStatusIDs {
		return nil, shared.NewDomainError("TOO_MANY_IDS",
			fmt.Sprintf("At most %d purchase orders may be updated at once", maxBulkStatusIDs))
	}

	orders, err := s.poRepo.FindByIDs(ctx, orgID, dedupeIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase orders: %w", err)
	}
	byID := make(map[uuid.UUID]*planning.PurchaseOrder, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}

	result := &BulkStatusResult{
		Action:    string(action),
		Requested: len(ids),
		Results:   make([]BulkStatusItemResult, 0, len(ids)),
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		var item BulkStatusItemResult
		if _, dup := seen[id]; dup {
			item = BulkStatusItemResult{
				ID: id, ErrorCode: "DUPLICATE_ID",
				Error: "Purchase order id appears more than once in the batch",
			}
		} else {
			seen[id] = struct{}{}
			item = s.applyStatusAction(ctx, orgID, userID, action, id, byID[id])
		}
		if item.Success {
			result.Succeeded++
		} else {
			result.Failed++
		}
		result.Results = append(result.Results, item)
	}
	return result, nil
}

func (s *BulkService) applyStatusAction(ctx context.Context, orgID, userID uuid.UUID, action planning.BulkAction, id uuid.UUID, po *planning.PurchaseOrder) BulkStatusItemResult {
	if po == nil {
		return BulkStatusItemResult{
			ID: id, ErrorCode: "NOT_FOUND", Error: "Purchase order not found",
		}
	}

	from := po.Status
	item := BulkStatusItemResult{ID: id, PONumber: po.PONumber, FromStatus: from.String()}

	if action == planning.BulkActionCancel {
		receipts, err := s.receiptRepo.CountByPurchaseOrder(ctx, orgID, id)
		if err != nil {
			item.ErrorCode = "RECEIPT_CHECK_FAILED"
			item.Error = "Failed to check receipts"
			return item
		}
		if receipts > 0 {
			item.ErrorCode = "HAS_RECEIPTS"
			item.Error = "Cannot cancel a purchase order with posted receipts"
			return item
		}
	}

	if err := po.ApplyBulkAction(action, userID); err != nil {
		var domainErr *shared.DomainError
		if de, ok := err.(*shared.DomainError); ok {
			domainErr = de
		} else {
			domainErr = shared.NewDomainError("INVALID_STATUS", err.Error())
		}
		item.ErrorCode = domainErr.Code
		item.Error = domainErr.Message
		return item
	}

	updated, err := s.poRepo.UpdateWhereStatus(ctx, po, from)
	if err != nil {
		item.ErrorCode = "UPDATE_FAILED"
		item.Error = "Failed to update purchase order"
		return item
	}
	if !updated {
		item.ErrorCode = "CONFLICT"
		item.Error = "Purchase order was modified by another process"
		return item
	}

	switch action {
	case planning.BulkActionApprove:
		s.appendHistory(ctx, orgID, po.ID, planning.HistoryActionApproved, userID)
	case planning.BulkActionReject:
		s.appendHistory(ctx, orgID, po.ID, planning.HistoryActionRejected, userID)
	}
	s.publishEvents(ctx, po)

	item.Success = true
	item.ToStatus = po.Status.String()
	return item
}

// ValidateBulkStatusChange previews which orders an action would apply to
// without changing anything. The report carries one item per input id so a
// caller can line it up with the request; repeated ids are ineligible after
// their first occurrence, matching how BulkUpdateStatus would treat them.
func (s *BulkService) ValidateBulkStatusChange(ctx context.Context, orgID uuid.UUID, action planning.BulkAction, ids []uuid.UUID) ([]BulkStatusPreviewItem, error) {
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", "Unknown bulk action: "+string(action))
	}
	if len(ids) == 0 {
		return nil, shared.NewDomainError("NO_IDS", "At least one purchase order id is required")
	}
	if len(ids) > maxBulkStatusIDs {
		return nil, shared.NewDomainError("TOO_MANY_IDS",
			fmt.Sprintf("At most %d purchase orders may be checked at once", maxBulkStatusIDs))
	}

	orders, err := s.poRepo.FindByIDs(ctx, orgID, dedupeIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load purchase orders: %w", err)
	}
	byID := make(map[uuid.UUID]*planning.PurchaseOrder, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}

	items := make([]BulkStatusPreviewItem, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			items = append(items, BulkStatusPreviewItem{
				ID: id, Reason: "Purchase order id appears more than once in the batch",
			})
			continue
		}
		seen[id] = struct{}{}
		po := byID[id]
		if po == nil {
			items = append(items, BulkStatusPreviewItem{ID: id, Reason: "Purchase order not found"})
			continue
		}
		item := BulkStatusPreviewItem{ID: id, PONumber: po.PONumber, CurrentStatus: po.Status.String()}
		if !action.AllowsSource(po.Status) {
			item.Reason = "Cannot " + string(action) + " a purchase order in status " + po.Status.String()
		} else if action == planning.BulkActionCancel {
			// an unverifiable receipt count blocks the cancel, the same
			// way the real update path treats it
			receipts, err := s.receiptRepo.CountByPurchaseOrder(ctx, orgID, id)
			switch {
			case err != nil:
				item.Reason = "Could not verify posted receipts"
			case receipts > 0:
				item.Reason = "Purchase order has posted receipts"
			default:
				item.Eligible = true
			}
		} else {
			item.Eligible = true
		}
		items = append(items, item)
	}
	return items, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *BulkService) appendHistory(ctx context.Context, orgID, poID uuid.UUID, action planning.HistoryAction, userID uuid.UUID) {
	user, err := s.identity.ResolveUser(ctx, orgID, userID)
	if err != nil || user == nil {
		user = &planning.OrgUser{ID: userID}
	}
	record := planning.NewApprovalHistoryRecord(orgID, poID, action, user.ID, user.Name, string(user.Role), "")
	if err := s.historyRepo.Append(ctx, record); err != nil {
		s.logger.Error("failed to append approval history",
			zap.String("po_id", poID.String()), zap.Error(err))
	}
}

func (s *BulkService) publishEvents(ctx context.Context, po *planning.PurchaseOrder) {
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
