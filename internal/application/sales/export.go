package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/crm/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ExportFormat is a supported export file format
type ExportFormat string

const (
	ExportFormatXLSX ExportFormat = "xlsx"
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatJSON ExportFormat = "json"
)

// ParseExportFormat validates a requested format, defaulting to xlsx
func ParseExportFormat(s string) (ExportFormat, error) {
	switch ExportFormat(s) {
	case "":
		return ExportFormatXLSX, nil
	case ExportFormatXLSX, ExportFormatCSV, ExportFormatJSON:
		return ExportFormat(s), nil
	}
	return "", shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unsupported export format %q", s))
}

// ExportRow is one invoice in an export file
type ExportRow struct {
	Number      string `json:"number"`
	InvoiceDate string `json:"invoice_date"`
	Type        string `json:"invoice_type"`
	SaleType    string `json:"sale_type"`
	CompanyID   string `json:"company_id"`
	Currency    string `json:"currency"`
	Lines       int    `json:"lines"`
	Total       string `json:"total"`
	TotalHome   string `json:"total_home"`
}

// ExportFile is an encoded export
type ExportFile struct {
	Name        string
	ContentType string
	Body        []byte
}

// Exporter encodes rows into a file
type Exporter interface {
	Export(ctx context.Context, format ExportFormat, baseName string, rows []ExportRow) (*ExportFile, error)
}

// ObjectStorage stores exported files
type ObjectStorage interface {
	PutObject(ctx context.Context, key, contentType string, body []byte) error
	GenerateDownloadURL(ctx context.Context, key, fileName string) (string, time.Time, error)
}

// ExportInvoices encodes matching invoices. With object storage configured the
// file is uploaded and only its key and download URL are returned.
func (s *Service) ExportInvoices(ctx context.Context, tenantID uuid.UUID, req InvoiceFilterRequest, rawFormat string) (*ExportFile, *ExportResponse, error) {
	if s.exporter == nil {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidState, "Invoice export is not configured")
	}
	format, err := ParseExportFormat(rawFormat)
	if err != nil {
		return nil, nil, err
	}
	filter, err := toFilter(req)
	if err != nil {
		return nil, nil, err
	}
	home, err := s.homes.Home(ctx, tenantID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve home currency: %w", err)
	}
	invoices, err := s.invoiceRepo.Find(ctx, tenantID, filter)
	if err != nil {
		return nil, nil, err
	}

	normalize := s.normalizer(ctx, tenantID, home)
	rows := make([]ExportRow, 0, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		native := inv.TotalAmount()
		converted, err := normalize(native, inv.Currency)
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, ExportRow{
			Number:      inv.Number,
			InvoiceDate: inv.InvoiceDate.Format("2006-01-02"),
			Type:        string(inv.Type),
			SaleType:    string(inv.SaleType),
			CompanyID:   inv.CompanyID.String(),
			Currency:    inv.Currency.String(),
			Lines:       len(inv.Lines),
			Total:       money(native),
			TotalHome:   money(converted),
		})
	}

	baseName := fmt.Sprintf("invoices-%s", s.now().Format("20060102-150405"))
	file, err := s.exporter.Export(ctx, format, baseName, rows)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode export: %w", err)
	}

	resp := &ExportResponse{FileName: file.Name, ContentType: file.ContentType, Rows: len(rows)}
	if s.storage == nil {
		return file, resp, nil
	}

	key := fmt.Sprintf("exports/%s/%s", tenantID, file.Name)
	if err := s.storage.PutObject(ctx, key, file.ContentType, file.Body); err != nil {
		return nil, nil, fmt.Errorf("failed to upload export: %w", err)
	}
	url, _, err := s.storage.GenerateDownloadURL(ctx, key, file.Name)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to sign export url: %w", err)
	}
	resp.StorageKey = key
	resp.DownloadURL = url

	s.logger.Info("invoice export uploaded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("key", key),
		zap.Int("rows", len(rows)),
	)
	return nil, resp, nil
}
