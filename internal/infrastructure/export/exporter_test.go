package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"testing"

	salesapp "github.com/erp/crm/internal/application/sales"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testRows() []salesapp.ExportRow {
	return []salesapp.ExportRow{
		{Number: "INV-1", InvoiceDate: "2026-03-01", Type: "sale", SaleType: "stock", CompanyID: "c1", Currency: "USD", Lines: 2, Total: "10.00", TotalHome: "950.00"},
		{Number: "INV-2", InvoiceDate: "2026-03-02", Type: "sale", SaleType: "order", CompanyID: "c1", Currency: "RUB", Lines: 1, Total: "500.00", TotalHome: "500.00"},
	}
}

func TestExport_CSV(t *testing.T) {
	file, err := NewInvoiceExporter().Export(context.Background(), salesapp.ExportFormatCSV, "invoices", testRows())
	require.NoError(t, err)

	assert.Equal(t, "invoices.csv", file.Name)
	assert.Equal(t, ContentTypeCSV, file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, header, records[0])
	assert.Equal(t, []string{"INV-1", "2026-03-01", "sale", "stock", "c1", "USD", "2", "10.00", "950.00"}, records[1])
}

func TestExport_JSON(t *testing.T) {
	file, err := NewInvoiceExporter().Export(context.Background(), salesapp.ExportFormatJSON, "invoices", testRows())
	require.NoError(t, err)

	assert.Equal(t, "invoices.json", file.Name)
	var rows []salesapp.ExportRow
	require.NoError(t, json.Unmarshal(file.Body, &rows))
	assert.Equal(t, testRows(), rows)
}

func TestExport_XLSX(t *testing.T) {
	file, err := NewInvoiceExporter().Export(context.Background(), salesapp.ExportFormatXLSX, "invoices", testRows())
	require.NoError(t, err)
	assert.Equal(t, "invoices.xlsx", file.Name)
	assert.Equal(t, ContentTypeXLSX, file.ContentType)

	f, err := excelize.OpenReader(bytes.NewReader(file.Body))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Number", rows[0][0])
	assert.Equal(t, "INV-2", rows[2][0])
	assert.Equal(t, "950", rows[1][8])
}

func TestExport_EmptyRowsKeepsHeader(t *testing.T) {
	file, err := NewInvoiceExporter().Export(context.Background(), salesapp.ExportFormatCSV, "empty", nil)
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(file.Body)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestExport_UnknownFormat(t *testing.T) {
	_, err := NewInvoiceExporter().Export(context.Background(), "pdf", "x", nil)

	assert.ErrorContains(t, err, "unsupported export format")
}
