// Package export encodes invoice rows as xlsx, csv or json files.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"

	salesapp "github.com/erp/crm/internal/application/sales"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeJSON = "application/json"

	sheetName = "Invoices"
)

var header = []string{"Number", "Date", "Type", "Sale type", "Company", "Currency", "Lines", "Total", "Total (home)"}

// InvoiceExporter implements salesapp.Exporter
type InvoiceExporter struct{}

// NewInvoiceExporter creates an exporter
func NewInvoiceExporter() *InvoiceExporter {
	return &InvoiceExporter{}
}

// Export encodes rows in the requested format
func (e *InvoiceExporter) Export(_ context.Context, format salesapp.ExportFormat, baseName string, rows []salesapp.ExportRow) (*salesapp.ExportFile, error) {
	var (
		body        []byte
		contentType string
		err         error
	)
	switch format {
	case salesapp.ExportFormatXLSX:
		body, err = encodeXLSX(rows)
		contentType = ContentTypeXLSX
	case salesapp.ExportFormatCSV:
		body, err = encodeCSV(rows)
		contentType = ContentTypeCSV
	case salesapp.ExportFormatJSON:
		body, err = json.MarshalIndent(rows, "", "  ")
		contentType = ContentTypeJSON
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s export: %w", format, err)
	}
	return &salesapp.ExportFile{
		Name:        baseName + "." + string(format),
		ContentType: contentType,
		Body:        body,
	}, nil
}

func record(r salesapp.ExportRow) []string {
	return []string{r.Number, r.InvoiceDate, r.Type, r.SaleType, r.CompanyID, r.Currency, fmt.Sprint(r.Lines), r.Total, r.TotalHome}
}

func encodeCSV(rows []salesapp.ExportRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(record(r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeXLSX(rows []salesapp.ExportRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	for col, title := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return nil, err
		}
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastHeader, bold); err != nil {
		return nil, err
	}

	for i, r := range rows {
		row := i + 2
		values := []any{r.Number, r.InvoiceDate, r.Type, r.SaleType, r.CompanyID, r.Currency, r.Lines, amount(r.Total), amount(r.TotalHome)}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, err
			}
		}
	}
	if err := f.SetColWidth(sheetName, "A", "A", 18); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(sheetName, "E", "E", 38); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// amount keeps totals numeric in the spreadsheet
func amount(s string) any {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return s
	}
	f, _ := d.Float64()
	return f
}

var _ salesapp.Exporter = (*InvoiceExporter)(nil)
