package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appplanning "github.com/mrpcore/backend/internal/application/planning"
	"github.com/mrpcore/backend/internal/domain/planning"
	"github.com/mrpcore/backend/internal/domain/shared"
	"github.com/mrpcore/backend/internal/domain/shared/valueobject"
	"github.com/mrpcore/backend/internal/interfaces/http/dto"
	"github.com/mrpcore/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubOrderService implements PurchaseOrderService with overridable funcs
type stubOrderService struct {
	createFn  func(ctx context.Context, orgID, userID uuid.UUID, input appplanning.CreatePurchaseOrderInput) (*planning.PurchaseOrder, error)
	getFn     func(ctx context.Context, orgID, poID uuid.UUID) (*planning.PurchaseOrder, error)
	listFn    func(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (shared.Paginated[planning.PurchaseOrder], error)
	submitFn  func(ctx context.Context, orgID, poID, userID uuid.UUID) (*appplanning.SubmitResult, error)
	approveFn func(ctx context.Context, orgID, poID, approverID uuid.UUID, notes string) (*appplanning.DecisionResult, error)
	rejectFn  func(ctx context.Context, orgID, poID, approverID uuid.UUID, reason string) (*appplanning.DecisionResult, error)
	cancelFn  func(ctx context.Context, orgID, poID, userID uuid.UUID) (*appplanning.DecisionResult, error)
	historyFn func(ctx context.Context, orgID, poID uuid.UUID, filter shared.Filter) (shared.Paginated[appplanning.HistoryEntry], error)
}

func (s *stubOrderService) CreateDraft(ctx context.Context, orgID, userID uuid.UUID, input appplanning.CreatePurchaseOrderInput) (*planning.PurchaseOrder, error) {
	return s.createFn(ctx, orgID, userID, input)
}

func (s *stubOrderService) Get(ctx context.Context, orgID, poID uuid.UUID) (*planning.PurchaseOrder, error) {
	return s.getFn(ctx, orgID, poID)
}

func (s *stubOrderService) List(ctx context.Context, orgID uuid.UUID, filter shared.Filter) (shared.Paginated[planning.PurchaseOrder], error) {
	return s.listFn(ctx, orgID, filter)
}

func (s *stubOrderService) Submit(ctx context.Context, orgID, poID, userID uuid.UUID) (*appplanning.SubmitResult, error) {
	return s.submitFn(ctx, orgID, poID, userID)
}

func (s *stubOrderService) Approve(ctx context.Context, orgID, poID, approverID uuid.UUID, notes string) (*appplanning.DecisionResult, error) {
	return s.approveFn(ctx, orgID, poID, approverID, notes)
}

func (s *stubOrderService) Reject(ctx context.Context, orgID, poID, approverID uuid.UUID, reason string) (*appplanning.DecisionResult, error) {
	return s.rejectFn(ctx, orgID, poID, approverID, reason)
}

func (s *stubOrderService) Cancel(ctx context.Context, orgID, poID, userID uuid.UUID) (*appplanning.DecisionResult, error) {
	return s.cancelFn(ctx, orgID, poID, userID)
}

func (s *stubOrderService) History(ctx context.Context, orgID, poID uuid.UUID, filter shared.Filter) (shared.Paginated[appplanning.HistoryEntry], error) {
	return s.historyFn(ctx, orgID, poID, filter)
}

// testAuth injects a fixed member identity the way the JWT middleware would
func testAuth(orgID, userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.AuthOrgIDKey, orgID)
		c.Set(middleware.AuthUserIDKey, userID)
		c.Next()
	}
}

func newOrderRouter(orgID, userID uuid.UUID, svc PurchaseOrderService) *gin.Engine {
	h := NewPurchaseOrderHandler(svc)
	router := gin.New()
	group := router.Group("/api/v1", testAuth(orgID, userID))
	group.POST("/purchase-orders", h.Create)
	group.GET("/purchase-orders", h.List)
	group.GET("/purchase-orders/:id", h.Get)
	group.POST("/purchase-orders/:id/submit", h.Submit)
	group.POST("/purchase-orders/:id/approve", h.Approve)
	group.POST("/purchase-orders/:id/reject", h.Reject)
	group.POST("/purchase-orders/:id/cancel", h.Cancel)
	group.GET("/purchase-orders/:id/history", h.History)
	return router
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func testOrder(t *testing.T, orgID uuid.UUID) *planning.PurchaseOrder {
	t.Helper()
	po, err := planning.NewPurchaseOrder(orgID, "PO-2026-00001", uuid.New(), valueobject.DefaultCurrency)
	require.NoError(t, err)
	return po
}

func TestPurchaseOrderHandler_Create(t *testing.T) {
	orgID, userID := uuid.New(), uuid.New()

	t.Run("creates a draft", func(t *testing.T) {
		po := testOrder(t, orgID)
		svc := &stubOrderService{
			createFn: func(_ context.Context, gotOrg, gotUser uuid.UUID, input appplanning.CreatePurchaseOrderInput) (*planning.PurchaseOrder, error) {
				assert.Equal(t, orgID, gotOrg)
				assert.Equal(t, userID, gotUser)
				assert.Equal(t, po.SupplierID, input.SupplierID)
				return po, nil
			},
		}
		router := newOrderRouter(orgID, userID, svc)

		body, _ := json.Marshal(gin.H{"supplier_id": po.SupplierID})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		router := newOrderRouter(orgID, userID, &stubOrderService{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("maps domain errors", func(t *testing.T) {
		svc := &stubOrderService{
			createFn: func(_ context.Context, _, _ uuid.UUID, _ appplanning.CreatePurchaseOrderInput) (*planning.PurchaseOrder, error) {
				return nil, shared.NewDomainError("SUPPLIER_NOT_FOUND", "Supplier not found")
			},
		}
		router := newOrderRouter(orgID, userID, svc)

		body, _ := json.Marshal(gin.H{"supplier_id": uuid.New()})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		resp := decodeResponse(t, rec)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "SUPPLIER_NOT_FOUND", resp.Error.Code)
	})
}

func TestPurchaseOrderHandler_Get(t *testing.T) {
	orgID, userID := uuid.New(), uuid.New()

	t.Run("returns the order", func(t *testing.T) {
		po := testOrder(t, orgID)
		svc := &stubOrderService{
			getFn: func(_ context.Context, _, poID uuid.UUID) (*planning.PurchaseOrder, error) {
				assert.Equal(t, po.ID, poID)
				return po, nil
			},
		}
		router := newOrderRouter(orgID, userID, svc)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders/"+po.ID.String(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "PO-2026-00001")
	})

	t.Run("rejects a malformed id", func(t *testing.T) {
		router := newOrderRouter(orgID, userID, &stubOrderService{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("404 when missing", func(t *testing.T) {
		svc := &stubOrderService{
			getFn: func(_ context.Context, _, _ uuid.UUID) (*planning.PurchaseOrder, error) {
				return nil, shared.ErrNotFound
			},
		}
		router := newOrderRouter(orgID, userID, svc)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders/"+uuid.NewString(), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPurchaseOrderHandler_List(t *testing.T) {
	orgID, userID := uuid.New(), uuid.New()

	svc := &stubOrderService{
		listFn: func(_ context.Context, _ uuid.UUID, filter shared.Filter) (shared.Paginated[planning.PurchaseOrder], error) {
			assert.Equal(t, 2, filter.Page)
			assert.Equal(t, "draft", filter.Filters["status"])
			po := testOrder(t, orgID)
			return shared.NewPaginated([]planning.PurchaseOrder{*po}, 21, filter.Page, filter.PageSize), nil
		},
	}
	router := newOrderRouter(orgID, userID, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders?page=2&page_size=10&status=draft", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(21), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}

func TestPurchaseOrderHandler_Decisions(t *testing.T) {
	orgID, userID := uuid.New(), uuid.New()
	poID := uuid.New()

	t.Run("submit", func(t *testing.T) {
		svc := &stubOrderService{
			submitFn: func(_ context.Context, _, gotPO, gotUser uuid.UUID) (*appplanning.SubmitResult, error) {
				assert.Equal(t, poID, gotPO)
				assert.Equal(t, userID, gotUser)
				return &appplanning.SubmitResult{ID: poID, Status: "pending_approval", ApprovalRequired: true}, nil
			},
		}
		router := newOrderRouter(orgID, userID, svc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/"+poID.String()+"/submit", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "pending_approval")
	})

	t.Run("approve without body", func(t *testing.T) {
		svc := &stubOrderService{
			approveFn: func(_ context.Context, _, _, _ uuid.UUID, notes string) (*appplanning.DecisionResult, error) {
				assert.Empty(t, notes)
				return &appplanning.DecisionResult{ID: poID, Status: "approved"}, nil
			},
		}
		router := newOrderRouter(orgID, userID, svc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/"+poID.String()+"/approve", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "approved")
	})

	t.Run("reject requires a reason", func(t *testing.T) {
		router := newOrderRouter(orgID, userID, &stubOrderService{})

		body, _ := json.Marshal(gin.H{})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/"+poID.String()+"/reject", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reject passes reason through", func(t *testing.T) {
		svc := &stubOrderService{
			rejectFn: func(_ context.Context, _, _, _ uuid.UUID, reason string) (*appplanning.DecisionResult, error) {
				assert.Equal(t, "Budget exceeded for this quarter", reason)
				return &appplanning.DecisionResult{ID: poID, Status: "rejected"}, nil
			},
		}
		router := newOrderRouter(orgID, userID, svc)

		body, _ := json.Marshal(gin.H{"reason": "Budget exceeded for this quarter"})
		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/"+poID.String()+"/reject", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("concurrent decision conflict", func(t *testing.T) {
		svc := &stubOrderService{
			approveFn: func(_ context.Context, _, _, _ uuid.UUID, _ string) (*appplanning.DecisionResult, error) {
				return nil, shared.NewDomainError("ALREADY_PROCESSED", "Order was already decided")
			},
		}
		router := newOrderRouter(orgID, userID, svc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/"+poID.String()+"/approve", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("cancel", func(t *testing.T) {
		svc := &stubOrderService{
			cancelFn: func(_ context.Context, _, _, _ uuid.UUID) (*appplanning.DecisionResult, error) {
				return &appplanning.DecisionResult{ID: poID, Status: "cancelled"}, nil
			},
		}
		router := newOrderRouter(orgID, userID, svc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/purchase-orders/"+poID.String()+"/cancel", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "cancelled")
	})
}

func TestPurchaseOrderHandler_History(t *testing.T) {
	orgID, userID := uuid.New(), uuid.New()
	poID := uuid.New()

	svc := &stubOrderService{
		historyFn: func(_ context.Context, _, gotPO uuid.UUID, filter shared.Filter) (shared.Paginated[appplanning.HistoryEntry], error) {
			assert.Equal(t, poID, gotPO)
			entries := []appplanning.HistoryEntry{{ID: uuid.New(), Action: "approved", UserID: userID}}
			return shared.NewPaginated(entries, 1, filter.Page, filter.PageSize), nil
		},
	}
	router := newOrderRouter(orgID, userID, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders/"+poID.String()+"/history", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "approved")
}

func TestPurchaseOrderHandler_Unauthenticated(t *testing.T) {
	h := NewPurchaseOrderHandler(&stubOrderService{})
	router := gin.New()
	router.GET("/api/v1/purchase-orders", h.List)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/purchase-orders", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
