package csvimport

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// File-level errors. Row-level problems are collected as RowErrors instead.
var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrInvalidEncoding = errors.New("file is not valid UTF-8")
	ErrMissingHeader   = errors.New("missing header row")
)

const (
	// MaxRows caps a single import file
	MaxRows = 500
	// PreviewRows is how many parsed rows a preview returns
	PreviewRows = 50

	dateFormat   = "2006-01-02"
	maxNotesLen  = 500
	maxCodeLen   = 50
)

var maxQuantity = decimal.RequireFromString("999999.99")

// Column names expected in the header row
const (
	ColProductCode  = "product_code"
	ColQuantity     = "quantity"
	ColUnitPrice    = "unit_price"
	ColSupplierID   = "supplier_id"
	ColDeliveryDate = "expected_delivery_date"
	ColNotes        = "notes"
)

var requiredColumns = []string{ColProductCode, ColQuantity}

// RowError describes one invalid cell. Line numbers are 1-indexed and
// include the header, matching what the user sees in a spreadsheet.
type RowError struct {
	Line    int    `json:"line"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OrderRow is one parsed purchase request line from the file
type OrderRow struct {
	Line                 int
	ProductCode          string
	Quantity             decimal.Decimal
	UnitPrice            *decimal.Decimal
	SupplierID           *uuid.UUID
	ExpectedDeliveryDate *time.Time
	Notes                string
}

// ParseResult holds everything extracted from one file
type ParseResult struct {
	Rows      []OrderRow
	Errors    []RowError
	TotalRows int
}

// OK returns true when every row parsed cleanly
func (r *ParseResult) OK() bool {
	return len(r.Errors) == 0
}

// Preview returns the first PreviewRows parsed rows
func (r *ParseResult) Preview() []OrderRow {
	if len(r.Rows) <= PreviewRows {
		return r.Rows
	}
	return r.Rows[:PreviewRows]
}

// ParseOrderRows parses a CSV file of purchase request lines. The file must
// be UTF-8 with a header row naming at least product_code and quantity.
// Invalid rows are reported per cell and skipped; a file with more than
// MaxRows data rows is rejected outright.
func ParseOrderRows(data []byte) (*ParseResult, error) {
	reader, err := newFileReader(data)
	if err != nil {
		return nil, err
	}

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrMissingHeader, required)
		}
	}

	result := &ParseResult{}
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			result.Errors = append(result.Errors, RowError{
				Line: line, Code: "PARSE_ERROR", Message: err.Error(),
			})
			continue
		}
		if isBlank(record) {
			continue
		}
		result.TotalRows++
		if result.TotalRows > MaxRows {
			return nil, fmt.Errorf("file exceeds the maximum of %d rows", MaxRows)
		}

		row, rowErrs := parseRow(line, record, columns)
		if len(rowErrs) > 0 {
			result.Errors = append(result.Errors, rowErrs...)
			continue
		}
		result.Rows = append(result.Rows, row)
	}

	if result.TotalRows == 0 && len(result.Errors) == 0 {
		return nil, ErrEmptyFile
	}
	return result, nil
}

func newFileReader(data []byte) (*csv.Reader, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}
	// Strip the UTF-8 BOM Excel likes to prepend
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if !utf8.Valid(data) {
		return nil, ErrInvalidEncoding
	}
	reader := csv.NewReader(bufio.NewReader(bytes.NewReader(data)))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	return reader, nil
}

func parseRow(line int, record []string, columns map[string]int) (OrderRow, []RowError) {
	cell := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var errs []RowError
	fail := func(column, code, message string) {
		errs = append(errs, RowError{Line: line, Column: column, Code: code, Message: message})
	}

	row := OrderRow{Line: line}

	row.ProductCode = cell(ColProductCode)
	if row.ProductCode == "" {
		fail(ColProductCode, "REQUIRED", "product code is required")
	} else if len(row.ProductCode) > maxCodeLen {
		fail(ColProductCode, "TOO_LONG", fmt.Sprintf("product code exceeds %d characters", maxCodeLen))
	}

	qtyRaw := cell(ColQuantity)
	if qtyRaw == "" {
		fail(ColQuantity, "REQUIRED", "quantity is required")
	} else if qty, err := decimal.NewFromString(qtyRaw); err != nil {
		fail(ColQuantity, "INVALID_NUMBER", fmt.Sprintf("invalid quantity %q", qtyRaw))
	} else if !qty.IsPositive() || qty.GreaterThan(maxQuantity) {
		fail(ColQuantity, "OUT_OF_RANGE", "quantity must be greater than 0 and at most 999999.99")
	} else {
		row.Quantity = qty
	}

	if raw := cell(ColUnitPrice); raw != "" {
		price, err := decimal.NewFromString(raw)
		switch {
		case err != nil:
			fail(ColUnitPrice, "INVALID_NUMBER", fmt.Sprintf("invalid unit price %q", raw))
		case price.IsNegative():
			fail(ColUnitPrice, "OUT_OF_RANGE", "unit price cannot be negative")
		default:
			row.UnitPrice = &price
		}
	}

	if raw := cell(ColSupplierID); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			fail(ColSupplierID, "INVALID_UUID", fmt.Sprintf("invalid supplier id %q", raw))
		} else {
			row.SupplierID = &id
		}
	}

	if raw := cell(ColDeliveryDate); raw != "" {
		date, err := time.Parse(dateFormat, raw)
		if err != nil {
			fail(ColDeliveryDate, "INVALID_DATE", fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", raw))
		} else {
			row.ExpectedDeliveryDate = &date
		}
	}

	row.Notes = cell(ColNotes)
	if len(row.Notes) > maxNotesLen {
		fail(ColNotes, "TOO_LONG", fmt.Sprintf("notes exceed %d characters", maxNotesLen))
	}

	return row, errs
}

func isBlank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
