package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appplanning "github.com/mrpcore/backend/internal/application/planning"
	"github.com/mrpcore/backend/internal/domain/planning"
	csvimport "github.com/mrpcore/backend/internal/infrastructure/import"
	"github.com/mrpcore/backend/internal/interfaces/http/dto"
)

// maxUploadSize caps CSV uploads well above the 500-row limit
const maxUploadSize = 5 << 20

// BulkService is the application surface for bulk operations
type BulkService interface {
	BulkCreate(ctx context.Context, orgID, userID uuid.UUID, input appplanning.BulkCreateInput) (*appplanning.BulkCreateResult, error)
	BulkUpdateStatus(ctx context.Context, orgID, userID uuid.UUID, action planning.BulkAction, ids []uuid.UUID) (*appplanning.BulkStatusResult, error)
	ValidateBulkStatusChange(ctx context.Context, orgID uuid.UUID, action planning.BulkAction, ids []uuid.UUID) ([]appplanning.BulkStatusPreviewItem, error)
}

// BulkHandler serves bulk order creation and bulk status endpoints
type BulkHandler struct {
	BaseHandler
	service BulkService
}

// NewBulkHandler creates a new BulkHandler
func NewBulkHandler(service BulkService) *BulkHandler {
	return &BulkHandler{service: service}
}

// BulkCreate creates supplier-grouped purchase orders from JSON rows
// POST /api/v1/purchase-orders/bulk
func (h *BulkHandler) BulkCreate(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var input appplanning.BulkCreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.BulkCreate(c.Request.Context(), orgID, userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ImportCSV creates supplier-grouped purchase orders from an uploaded CSV file
// POST /api/v1/purchase-orders/import
func (h *BulkHandler) ImportCSV(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	parsed, ok := h.readUpload(c)
	if !ok {
		return
	}
	if !parsed.OK() {
		h.Success(c, newImportPreviewResponse(parsed, false))
		return
	}

	input := appplanning.BulkCreateInput{Items: mapImportRows(parsed.Rows)}
	if warehouseID := c.Query("warehouse_id"); warehouseID != "" {
		id, err := uuid.Parse(warehouseID)
		if err != nil {
			h.BadRequest(c, "Invalid warehouse id")
			return
		}
		input.WarehouseID = &id
	}

	result, err := h.service.BulkCreate(c.Request.Context(), orgID, userID, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ValidateCSV parses an uploaded CSV and reports row errors without creating
// anything
// POST /api/v1/purchase-orders/import/validate
func (h *BulkHandler) ValidateCSV(c *gin.Context) {
	if _, _, ok := identity(c); !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	parsed, ok := h.readUpload(c)
	if !ok {
		return
	}
	h.Success(c, newImportPreviewResponse(parsed, true))
}

// BulkUpdateStatus applies one workflow action to many orders
// POST /api/v1/purchase-orders/bulk/status
func (h *BulkHandler) BulkUpdateStatus(c *gin.Context) {
	orgID, userID, ok := identity(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req dto.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.BulkUpdateStatus(c.Request.Context(), orgID, userID,
		planning.BulkAction(req.Action), req.IDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ValidateBulkStatus previews which orders a bulk action would touch
// POST /api/v1/purchase-orders/bulk/status/validate
func (h *BulkHandler) ValidateBulkStatus(c *gin.Context) {
	orgID, _, ok := identity(c)
	if !ok {
		h.Unauthorized(c, "Authentication required")
		return
	}
	var req dto.BulkStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	items, err := h.service.ValidateBulkStatusChange(c.Request.Context(), orgID,
		planning.BulkAction(req.Action), req.IDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// readUpload extracts and parses the "file" form field. It writes the error
// response itself and reports ok=false when the request cannot proceed.
func (h *BulkHandler) readUpload(c *gin.Context) (*csvimport.ParseResult, bool) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "A CSV file is required in the 'file' field")
		return nil, false
	}
	if fileHeader.Size > maxUploadSize {
		h.BadRequest(c, "File is too large")
		return nil, false
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.InternalError(c, "Could not read uploaded file")
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		h.InternalError(c, "Could not read uploaded file")
		return nil, false
	}

	parsed, err := csvimport.ParseOrderRows(data)
	if err != nil {
		h.respondImportError(c, err)
		return nil, false
	}
	return parsed, true
}

func (h *BulkHandler) respondImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, csvimport.ErrEmptyFile):
		h.BadRequest(c, "The file contains no data rows")
	case errors.Is(err, csvimport.ErrInvalidEncoding):
		h.BadRequest(c, "The file is not valid UTF-8")
	case errors.Is(err, csvimport.ErrMissingHeader):
		h.BadRequest(c, err.Error())
	default:
		h.respondError(c, http.StatusBadRequest, dto.ErrCodeBadRequest, err.Error())
	}
}

// ImportPreviewResponse reports the parse outcome of an uploaded CSV
type ImportPreviewResponse struct {
	Valid     bool                 `json:"valid"`
	TotalRows int                  `json:"total_rows"`
	ValidRows int                  `json:"valid_rows"`
	Errors    []csvimport.RowError `json:"errors"`
	Preview   []importPreviewRow   `json:"preview,omitempty"`
}

type importPreviewRow struct {
	Line                 int        `json:"line"`
	ProductCode          string     `json:"product_code"`
	Quantity             string     `json:"quantity"`
	UnitPrice            *string    `json:"unit_price,omitempty"`
	SupplierID           *uuid.UUID `json:"supplier_id,omitempty"`
	ExpectedDeliveryDate *string    `json:"expected_delivery_date,omitempty"`
	Notes                string     `json:"notes,omitempty"`
}

func newImportPreviewResponse(parsed *csvimport.ParseResult, withPreview bool) ImportPreviewResponse {
	resp := ImportPreviewResponse{
		Valid:     parsed.OK(),
		TotalRows: parsed.TotalRows,
		ValidRows: len(parsed.Rows),
		Errors:    parsed.Errors,
	}
	if resp.Errors == nil {
		resp.Errors = []csvimport.RowError{}
	}
	if withPreview {
		for _, row := range parsed.Preview() {
			preview := importPreviewRow{
				Line:        row.Line,
				ProductCode: row.ProductCode,
				Quantity:    row.Quantity.String(),
				SupplierID:  row.SupplierID,
				Notes:       row.Notes,
			}
			if row.UnitPrice != nil {
				price := row.UnitPrice.String()
				preview.UnitPrice = &price
			}
			if row.ExpectedDeliveryDate != nil {
				date := row.ExpectedDeliveryDate.Format("2006-01-02")
				preview.ExpectedDeliveryDate = &date
			}
			resp.Preview = append(resp.Preview, preview)
		}
	}
	return resp
}

func mapImportRows(rows []csvimport.OrderRow) []appplanning.BulkCreateItem {
	items := make([]appplanning.BulkCreateItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, appplanning.BulkCreateItem{
			ProductCode:          row.ProductCode,
			Quantity:             row.Quantity,
			UnitPrice:            row.UnitPrice,
			SupplierID:           row.SupplierID,
			ExpectedDeliveryDate: row.ExpectedDeliveryDate,
			Notes:                row.Notes,
		})
	}
	return items
}
