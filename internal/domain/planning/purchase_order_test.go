package planning

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrpcore/backend/internal/domain/shared"
	"github.com/mrpcore/backend/internal/domain/shared/valueobject"
)

func newTestPO(t *testing.T) *PurchaseOrder {
	t.Helper()
	po, err := NewPurchaseOrder(uuid.New(), "PO-2026-00001", uuid.New(), valueobject.PLN)
	require.NoError(t, err)
	po.ClearDomainEvents()
	return po
}

func newTestLine(t *testing.T, qty, price, discount string) *PurchaseOrderLine {
	t.Helper()
	line, err := NewPurchaseOrderLine(uuid.New(), dec(qty), dec(price), dec(discount), PriceSourceStandard)
	require.NoError(t, err)
	return line
}

func TestNewPurchaseOrder(t *testing.T) {
	t.Run("creates draft with defaults", func(t *testing.T) {
		orgID := uuid.New()
		supplierID := uuid.New()
		po, err := NewPurchaseOrder(orgID, "PO-2026-00042", supplierID, "")
		require.NoError(t, err)
		assert.Equal(t, StatusDraft, po.Status)
		assert.Equal(t, valueobject.PLN, po.Currency)
		assert.Equal(t, orgID, po.OrgID)
		assert.Equal(t, supplierID, po.SupplierID)
		assert.True(t, po.Total.IsZero())
		assert.Nil(t, po.ApprovalStatus)

		events := po.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypePurchaseOrderCreated, events[0].EventType())
	})

	t.Run("requires po number", func(t *testing.T) {
		_, err := NewPurchaseOrder(uuid.New(), "", uuid.New(), valueobject.PLN)
		require.Error(t, err)
	})

	t.Run("requires supplier", func(t *testing.T) {
		_, err := NewPurchaseOrder(uuid.New(), "PO-2026-00001", uuid.Nil, valueobject.PLN)
		require.Error(t, err)
	})
}

func TestNewPurchaseOrderLine(t *testing.T) {
	tests := []struct {
		name     string
		qty      string
		price    string
		discount string
		wantCode string
	}{
		{"valid", "10", "2.50", "0", ""},
		{"zero quantity", "0", "2.50", "0", "INVALID_QUANTITY"},
		{"negative quantity", "-1", "2.50", "0", "INVALID_QUANTITY"},
		{"quantity at cap", "999999.99", "1", "0", ""},
		{"quantity over cap", "1000000", "1", "0", "INVALID_QUANTITY"},
		{"zero price is allowed", "1", "0", "0", ""},
		{"negative price", "1", "-0.01", "0", "INVALID_PRICE"},
		{"discount at hundred", "1", "1", "100", ""},
		{"discount over hundred", "1", "1", "100.01", "INVALID_DISCOUNT"},
		{"negative discount", "1", "1", "-1", "INVALID_DISCOUNT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, err := NewPurchaseOrderLine(uuid.New(), dec(tt.qty), dec(tt.price), dec(tt.discount), PriceSourceStandard)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.NotNil(t, line)
				return
			}
			require.Error(t, err)
			var domainErr *shared.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, tt.wantCode, domainErr.Code)
		})
	}

	t.Run("line total is rounded net amount", func(t *testing.T) {
		line := newTestLine(t, "100", "2.50", "10")
		assert.Equal(t, "225.00", line.LineTotal.StringFixed(2))
	})

	t.Run("requires product", func(t *testing.T) {
		_, err := NewPurchaseOrderLine(uuid.Nil, dec("1"), dec("1"), decimal.Zero, PriceSourceStandard)
		require.Error(t, err)
	})
}

func TestPurchaseOrder_AddLine(t *testing.T) {
	t.Run("adds lines and recalculates totals", func(t *testing.T) {
		po := newTestPO(t)
		require.NoError(t, po.SetTaxCode(nil, dec("23")))
		require.NoError(t, po.AddLine(newTestLine(t, "100", "10", "0")))
		require.NoError(t, po.AddLine(newTestLine(t, "100", "2.50", "10")))

		assert.Equal(t, 1, po.Lines[0].LineNumber)
		assert.Equal(t, 2, po.Lines[1].LineNumber)
		assert.Equal(t, "1225.00", po.Subtotal.StringFixed(2))
		assert.Equal(t, "281.75", po.TaxAmount.StringFixed(2))
		assert.Equal(t, "1506.75", po.Total.StringFixed(2))
		assert.True(t, po.Total.Equal(po.Subtotal.Add(po.TaxAmount)))
	})

	t.Run("same product on two lines stays as two rows", func(t *testing.T) {
		po := newTestPO(t)
		productID := uuid.New()
		first, err := NewPurchaseOrderLine(productID, dec("5"), dec("2"), decimal.Zero, PriceSourceStandard)
		require.NoError(t, err)
		second, err := NewPurchaseOrderLine(productID, dec("3"), dec("2"), decimal.Zero, PriceSourceImport)
		require.NoError(t, err)
		require.NoError(t, po.AddLine(first))
		require.NoError(t, po.AddLine(second))
		assert.Len(t, po.Lines, 2)
		assert.Equal(t, "16.00", po.Subtotal.StringFixed(2))
	})

	t.Run("rejects non-draft order", func(t *testing.T) {
		po := newTestPO(t)
		require.NoError(t, po.AddLine(newTestLine(t, "1", "1", "0")))
		require.NoError(t, po.Submit(uuid.New(), false))
		err := po.AddLine(newTestLine(t, "1", "1", "0"))
		require.Error(t, err)
	})
}

func TestPurchaseOrder_RemoveLine(t *testing.T) {
	t.Run("removes and renumbers", func(t *testing.T) {
		po := newTestPO(t)
		first := newTestLine(t, "1", "10", "0")
		second := newTestLine(t, "2", "10", "0")
		require.NoError(t, po.AddLine(first))
		require.NoError(t, po.AddLine(second))

		require.NoError(t, po.RemoveLine(first.ID))
		require.Len(t, po.Lines, 1)
		assert.Equal(t, 1, po.Lines[0].LineNumber)
		assert.Equal(t, "20.00", po.Subtotal.StringFixed(2))
	})

	t.Run("blocks removal of received line", func(t *testing.T) {
		po := newTestPO(t)
		line := newTestLine(t, "10", "10", "0")
		require.NoError(t, po.AddLine(line))
		po.Lines[0].ReceivedQty = dec("4")

		err := po.RemoveLine(line.ID)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "LINE_HAS_RECEIPTS", domainErr.Code)
	})

	t.Run("unknown line", func(t *testing.T) {
		po := newTestPO(t)
		err := po.RemoveLine(uuid.New())
		require.Error(t, err)
	})
}

func TestPurchaseOrder_Submit(t *testing.T) {
	t.Run("without approval goes to submitted", func(t *testing.T) {
		po := newTestPO(t)
		require.NoError(t, po.AddLine(newTestLine(t, "1", "10", "0")))
		userID := uuid.New()

		require.NoError(t, po.Submit(userID, false))
		assert.Equal(t, StatusSubmitted, po.Status)
		assert.Nil(t, po.ApprovalStatus)
		require.NotNil(t, po.SubmittedBy)
		assert.Equal(t, userID, *po.SubmittedBy)
		assert.NotNil(t, po.SubmittedAt)

		events := po.GetDomainEvents()
		require.Len(t, events, 1)
		submitted, ok := events[0].(*PurchaseOrderSubmittedEvent)
		require.True(t, ok)
		assert.False(t, submitted.RequiresApproval)
	})

	t.Run("with approval goes to pending approval", func(t *testing.T) {
		po := newTestPO(t)
		require.NoError(t, po.AddLine(newTestLine(t, "1", "10", "0")))

		require.NoError(t, po.Submit(uuid.New(), true))
		assert.Equal(t, StatusPendingApproval, po.Status)
		require.NotNil(t, po.ApprovalStatus)
		assert.Equal(t, ApprovalStatePending, *po.ApprovalStatus)
	})

	t.Run("rejects empty order", func(t *testing.T) {
		po := newTestPO(t)
		err := po.Submit(uuid.New(), false)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NO_LINES", domainErr.Code)
	})

	t.Run("rejects non-draft order", func(t *testing.T) {
		po := newTestPO(t)
		require.NoError(t, po.AddLine(newTestLine(t, "1", "10", "0")))
		require.NoError(t, po.Submit(uuid.New(), false))

		err := po.Submit(uuid.New(), false)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_DRAFT", domainErr.Code)
	})
}

func TestPurchaseOrder_Approve(t *testing.T) {
	pendingPO := func(t *testing.T) *PurchaseOrder {
		po := newTestPO(t)
		require.NoError(t, po.AddLine(newTestLine(t, "1", "10", "0")))
		require.NoError(t, po.Submit(uuid.New(), true))
		po.ClearDomainEvents()
		return po
	}

	t.Run("approves pending order", func(t *testing.T) {
		po := pendingPO(t)
		approverID := uuid.New()

		require.NoError(t, po.Approve(approverID, "budget ok"))
		assert.Equal(t, StatusApproved, po.Status)
		require.NotNil(t, po.ApprovalStatus)
		assert.Equal(t, ApprovalStateApproved, *po.ApprovalStatus)
		require.NotNil(t, po.ApprovedBy)
		assert.Equal(t, approverID, *po.ApprovedBy)
		assert.NotNil(t, po.ApprovedAt)
		assert.Equal(t, "budget ok", po.ApprovalNotes)

		events := po.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypePurchaseOrderApproved, events[0].EventType())
	})

	t.Run("rejects order not pending approval", func(t *testing.T) {
		po := newTestPO(t)
		err := po.Approve(uuid.New(), "")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_PENDING_APPROVAL", domainErr.Code)
	})
}

func TestPurchaseOrder_Reject(t *testing.T) {
	po := newTestPO(t)
	require.NoError(t, po.AddLine(newTestLine(t, "1", "10", "0")))
	require.NoError(t, po.Submit(uuid.New(), true))
	po.ClearDomainEvents()

	approverID := uuid.New()
	require.NoError(t, po.Reject(approverID, "quantities exceed the quarterly budget"))
	assert.Equal(t, StatusRejected, po.Status)
	require.NotNil(t, po.ApprovalStatus)
	assert.Equal(t, ApprovalStateRejected, *po.ApprovalStatus)
	assert.Equal(t, "quantities exceed the quarterly budget", po.RejectionReason)

	events := po.GetDomainEvents()
	require.Len(t, events, 1)
	assert.Equal(t, EventTypePurchaseOrderRejected, events[0].EventType())

	// rejected orders can be reworked back to draft
	require.NoError(t, po.TransitionTo(StatusDraft, uuid.New(), true))
	assert.Equal(t, StatusDraft, po.Status)
}

func TestPurchaseOrder_TransitionTo(t *testing.T) {
	po := newTestPO(t)
	require.NoError(t, po.AddLine(newTestLine(t, "1", "10", "0")))
	require.NoError(t, po.Submit(uuid.New(), false))

	require.NoError(t, po.TransitionTo(StatusConfirmed, uuid.New(), false))
	require.NoError(t, po.TransitionTo(StatusReceiving, uuid.New(), false))
	require.NoError(t, po.TransitionTo(StatusClosed, uuid.New(), false))

	err := po.TransitionTo(StatusDraft, uuid.New(), false)
	require.Error(t, err)
}

func TestResolvePrice(t *testing.T) {
	importPrice := decPtr("9.99")
	supplierPrice := decPtr("8.50")
	standardPrice := decPtr("12.00")

	t.Run("explicit price wins", func(t *testing.T) {
		got := ResolvePrice(importPrice, supplierPrice, standardPrice)
		assert.Equal(t, PriceSourceImport, got.Source)
		assert.True(t, got.UnitPrice.Equal(*importPrice))
	})

	t.Run("supplier price beats standard", func(t *testing.T) {
		got := ResolvePrice(nil, supplierPrice, standardPrice)
		assert.Equal(t, PriceSourceSupplier, got.Source)
		assert.True(t, got.UnitPrice.Equal(*supplierPrice))
	})

	t.Run("standard price is the fallback", func(t *testing.T) {
		got := ResolvePrice(nil, nil, standardPrice)
		assert.Equal(t, PriceSourceStandard, got.Source)
		assert.True(t, got.UnitPrice.Equal(*standardPrice))
	})

	t.Run("unknown product resolves to zero standard", func(t *testing.T) {
		got := ResolvePrice(nil, nil, nil)
		assert.Equal(t, PriceSourceStandard, got.Source)
		assert.True(t, got.UnitPrice.IsZero())
	})
}
